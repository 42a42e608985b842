package relay

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/ontosync/ontology"
	"github.com/c360studio/ontosync/translate"
)

func TestDecodeEvent(t *testing.T) {
	ev, err := DecodeEvent([]byte(`{"type":"Class","props":{"name":"Person"},"isAdd":true}`))
	require.NoError(t, err)
	assert.Equal(t, "Person", ev.Name())
	assert.True(t, ev.IsAdd)

	kind, err := ev.Kind()
	require.NoError(t, err)
	assert.Equal(t, ontology.KindClass, kind)
}

func TestDecodeEvent_Malformed(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{"not json", `{"type":`},
		{"unknown type", `{"type":"Annotation","props":{"name":"x"},"isAdd":true}`},
		{"missing name", `{"type":"Class","props":{},"isAdd":true}`},
		{"blank name", `{"type":"Individual","props":{"name":"  "},"isAdd":false}`},
		{"no props", `{"type":"Class","isAdd":true}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeEvent([]byte(tt.payload))
			assert.ErrorIs(t, err, ErrMalformedEvent)
		})
	}
}

func TestEventFromNotification_WireFormat(t *testing.T) {
	data, err := EventFromNotification(translate.Notification{
		Kind: ontology.KindDataProperty,
		Name: "age",
		Add:  false,
	}).Encode()
	require.NoError(t, err)

	var wire map[string]any
	require.NoError(t, json.Unmarshal(data, &wire))
	assert.Equal(t, "DataProperty", wire["type"])
	assert.Equal(t, map[string]any{"name": "age"}, wire["props"])
	assert.Equal(t, false, wire["isAdd"])
}

func TestErrorClassification(t *testing.T) {
	assert.True(t, IsTransient(classifyHTTPError("pull", 503, nil)))
	assert.True(t, IsTransient(classifyHTTPError("pull", 429, nil)))
	assert.True(t, IsFatal(classifyHTTPError("push", 404, nil)))
	assert.True(t, IsFatal(classifyHTTPError("push", 400, []byte("bad"))))
	assert.False(t, IsFatal(transientError("pull", assert.AnError)))
	assert.False(t, IsTransient(assert.AnError))
	assert.False(t, IsFatal(assert.AnError))

	err := fatalError("push", assert.AnError)
	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, "push: "+assert.AnError.Error(), err.Error())
}
