/*
Package dsl provides a fluent Go builder for pagecraft component trees.

It lets tests, fixtures and generators describe a page in code instead of
hand-written JSON documents. Nodes are declared in order; a node placed under a
parent becomes that parent's next child.

Example usage:

	b := dsl.New()

	b.Add("hero").Type("section").Class("hero").Page("landing")
	b.Add("title").Type("h1").Text("Build pages faster").Under("hero")
	b.Add("cta").Type("button").Text("Get started").
		Style("backgroundColor", "#2563eb").
		Under("hero")

	eng, err := b.Engine(pagecraft.WithLogger(logger))
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(eng.RenderPage("landing"))
*/
package dsl
