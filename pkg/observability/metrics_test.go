package observability_test

import (
	"context"
	"testing"

	"github.com/aretw0/pagecraft"
	"github.com/aretw0/pagecraft/pkg/adapters/memory"
	"github.com/aretw0/pagecraft/pkg/domain"
	"github.com/aretw0/pagecraft/pkg/observability"
	"github.com/aretw0/pagecraft/pkg/ports"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Hooks(t *testing.T) {
	m := observability.NewMetrics(prometheus.NewRegistry())
	eng := pagecraft.New(pagecraft.WithLifecycleHooks(m.Hooks()))

	require.NoError(t, eng.Add(domain.Node{ID: "a", Type: "div"}, ""))
	require.NoError(t, eng.Add(domain.Node{ID: "b", Type: "p"}, "a"))
	eng.Update("b", domain.NodePatch{Props: domain.Props{"children": domain.String("hi")}})
	eng.Reorder("a", "b", domain.PositionInside)
	eng.Update("ghost", domain.NodePatch{Type: "p"})

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Mutations.WithLabelValues(string(domain.EventNodeAdded))))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Mutations.WithLabelValues(string(domain.EventNodeUpdated))))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Diagnostics.WithLabelValues(string(domain.DiagCycleViolation), "reorder")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Diagnostics.WithLabelValues(string(domain.DiagReferenceNotFound), "update")))
}

func TestMetrics_StoreMiddleware(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := observability.NewMetrics(reg)
	store := m.StoreMiddleware()(memory.NewStore())
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "doc", []byte(`{}`)))
	_, err := store.Load(ctx, "doc")
	require.NoError(t, err)
	_, err = store.Load(ctx, "missing")
	assert.ErrorIs(t, err, ports.ErrDocumentNotFound)

	assert.Equal(t, 3, testutil.CollectAndCount(m.StoreOps))

	assert.Equal(t, 0, testutil.CollectAndCount(m.Diagnostics))
}
