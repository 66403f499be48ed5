package source

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kingrea/draftdesk/internal/content"
)

func mustCatalog(t *testing.T) *Catalog {
	t.Helper()
	cat, err := DefaultCatalog()
	require.NoError(t, err)
	return cat
}

func TestDefaultRegistryCoversEveryKind(t *testing.T) {
	reg := NewDefaultRegistry(mustCatalog(t))
	for _, kind := range content.Kinds {
		adapter, err := reg.Resolve(kind)
		require.NoError(t, err, "kind %s", kind)
		assert.Equal(t, kind, adapter.Kind())
	}
	assert.Len(t, reg.Kinds(), len(content.Kinds))
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register(NewFeedAdapter()))
	err := reg.Register(NewFeedAdapter())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")
}

func TestRegistryExtractRequiresSource(t *testing.T) {
	reg := NewDefaultRegistry(nil)
	_, err := reg.Extract(content.NoSource())
	require.Error(t, err)
}

func TestAdaptersPanicOnMalformedPayload(t *testing.T) {
	adapters := []Adapter{
		NewVideoAdapter(),
		NewTranscriptAdapter(),
		NewTrendingAdapter(nil),
		NewFeedAdapter(),
		NewWebLinkAdapter(nil),
	}
	for _, adapter := range adapters {
		adapter := adapter
		t.Run(string(adapter.Kind()), func(t *testing.T) {
			wrong := content.Payload(content.WebLinkPayload{URL: "https://example.com"})
			if adapter.Kind() == content.KindWebLink {
				wrong = content.FeedArticlesPayload{}
			}
			defer func() {
				r := recover()
				require.NotNil(t, r, "expected panic")
				mpe, ok := r.(*MalformedPayloadError)
				require.True(t, ok, "panic value %T", r)
				assert.Equal(t, adapter.Kind(), mpe.Adapter)
				assert.Contains(t, mpe.Error(), string(adapter.Kind()))
			}()
			adapter.Extract(wrong)
		})
	}
}

func TestAdaptersReportEmptyForNilPayload(t *testing.T) {
	reg := NewDefaultRegistry(mustCatalog(t))
	for _, kind := range content.Kinds {
		adapter, err := reg.Resolve(kind)
		require.NoError(t, err)
		ext := adapter.Extract(nil)
		assert.True(t, ext.Empty(), "kind %s", kind)
		assert.NotEmpty(t, ext.Reason, "kind %s must explain the empty extraction", kind)
	}
}
