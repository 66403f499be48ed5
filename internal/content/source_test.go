package content

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSourceRejectsMismatchedPayload(t *testing.T) {
	_, err := NewSource(KindVideo, WebLinkPayload{URL: "https://example.com"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not match")
}

func TestNewSourceNoneMustBeEmpty(t *testing.T) {
	_, err := NewSource(KindNone, WebLinkPayload{})
	require.Error(t, err)

	src, err := NewSource(KindNone, nil)
	require.NoError(t, err)
	assert.True(t, src.IsZero())
	assert.Nil(t, src.Payload)
}

func TestNewSourceRequiresPayload(t *testing.T) {
	_, err := NewSource(KindFeedArticles, nil)
	require.Error(t, err)
}

func TestParseKind(t *testing.T) {
	kind, err := ParseKind(" Feed-Articles ")
	require.NoError(t, err)
	assert.Equal(t, KindFeedArticles, kind)

	kind, err = ParseKind("")
	require.NoError(t, err)
	assert.Equal(t, KindNone, kind)

	_, err = ParseKind("podcast")
	require.Error(t, err)
}

func TestSourceJSONKeepsVariant(t *testing.T) {
	src := MustSource(KindTrendingTopic, TrendingTopicPayload{
		Topic:        Topic{ID: "t1", Name: "Eleições", Direction: TrendUp},
		SkipCuration: true,
	})
	data, err := json.Marshal(src)
	require.NoError(t, err)

	var decoded Source
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Equal(t, KindTrendingTopic, decoded.Kind)
	payload, ok := decoded.Payload.(TrendingTopicPayload)
	require.True(t, ok, "payload type %T", decoded.Payload)
	assert.Equal(t, "Eleições", payload.Topic.Name)
	assert.True(t, payload.SkipCuration)
}

func TestSourceJSONNone(t *testing.T) {
	data, err := json.Marshal(Source{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"none"}`, string(data))

	var decoded Source
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, decoded.IsZero())
}

func TestSourceJSONMissingPayload(t *testing.T) {
	var decoded Source
	err := json.Unmarshal([]byte(`{"kind":"video"}`), &decoded)
	require.Error(t, err)
}

func TestFormatTimestamp(t *testing.T) {
	assert.Equal(t, "00:00", FormatTimestamp(-3))
	assert.Equal(t, "01:05", FormatTimestamp(65.9))
	assert.Equal(t, "1:00:01", FormatTimestamp(3601))
}

func TestMaterialsWithAndTotal(t *testing.T) {
	var m Materials
	next := m.With(MaterialVideos, []Material{NewMaterial(" clip.mp4 ")})
	assert.Equal(t, 0, m.Total())
	assert.Equal(t, 1, next.Total())
	assert.Equal(t, "clip.mp4", next.Videos[0].Reference)
	assert.Equal(t, MaterialPending, next.Videos[0].Status)
}
