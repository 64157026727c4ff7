package message

import (
	"bytes"
	"encoding/json"
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	inputs := [][]byte{
		{},
		[]byte("hello"),
		[]byte("Zażółć gęślą jaźń … ünïcödé ✓"),
		{0x00, 0xff, 0x10, 0x80, 0x7f},
		bytes.Repeat([]byte{0xab, 0xcd}, 4096),
	}

	for _, in := range inputs {
		out, err := DecodeString(EncodeBytes(in))
		if err != nil {
			t.Fatalf("DecodeString() error = %v", err)
		}
		if !bytes.Equal(out, in) {
			t.Errorf("round trip mismatch: got %v, want %v", out, in)
		}
	}
}

func TestTranslationRequest_Marshal(t *testing.T) {
	req := NewTextRequest("Bonjour le monde", "French", "English")

	data, err := req.Marshal(false)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var got map[string]string
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	want := map[string]string{
		"input":           "Bonjour le monde",
		"source_language": "French",
		"target_language": "English",
		"task_string":     "text2text",
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("%s = %q, want %q", k, got[k], v)
		}
	}
	if len(got) != len(want) {
		t.Errorf("unexpected fields: %v", got)
	}
}

func TestTranslationRequest_MarshalWrapped(t *testing.T) {
	req := NewSpeechRequest([]byte("OggS"), "English", "French")

	data, err := req.Marshal(true)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}

	var env struct {
		Data map[string]string `json:"data"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if env.Data["task_string"] != "speech2text" {
		t.Errorf("task_string = %q, want speech2text", env.Data["task_string"])
	}
	if env.Data["input"] != "T2dnUw==" {
		t.Errorf("input = %q, want base64 of OggS", env.Data["input"])
	}
}
