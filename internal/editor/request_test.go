package editor

import (
	"errors"
	"testing"

	"texgallery/internal/services"
)

func TestNewOperation(t *testing.T) {
	settings := Settings{PlaceholderSize: 16, PlaceholderColor: "#808080"}
	pct := 40.0

	op, err := NewOperation(Request{Operation: "saturation", Percent: &pct}, settings)
	if err != nil {
		t.Fatal(err)
	}
	if sat, ok := op.(*Saturation); !ok || sat.Percent != 40 || sat.Preset.Name != "rec709" {
		t.Fatalf("unexpected saturation op %#v", op)
	}

	op, err = NewOperation(Request{Operation: "create_new", Color: "#112233"}, settings)
	if err != nil {
		t.Fatal(err)
	}
	if cn := op.(*CreateNew); cn.Width != 16 || cn.Height != 16 {
		t.Fatalf("expected placeholder defaults, got %dx%d", cn.Width, cn.Height)
	}

	for _, req := range []Request{
		{Operation: "saturation"},
		{Operation: "tint"},
		{Operation: "draw"},
		{Operation: "explode"},
	} {
		if _, err := NewOperation(req, settings); !errors.Is(err, services.ErrValidation) {
			t.Fatalf("%q: expected validation failure, got %v", req.Operation, err)
		}
	}
}
