package types

import (
	"errors"
	"testing"
)

func TestSavedViewValidate(t *testing.T) {
	tests := []struct {
		name    string
		view    SavedView
		wantErr error
	}{
		{name: "valid", view: SavedView{Name: "east", Query: "q=web&size=25"}},
		{name: "empty query", view: SavedView{Name: "east"}},
		{name: "empty name", view: SavedView{Query: "q=web"}, wantErr: ErrInvalidName},
		{name: "blank name", view: SavedView{Name: "   "}, wantErr: ErrInvalidName},
		{name: "padded name", view: SavedView{Name: "east "}, wantErr: ErrInvalidName},
		{name: "bad escape", view: SavedView{Name: "east", Query: "q=%zz"}, wantErr: ErrMalformedQuery},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.view.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("expected nil error, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected error %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestSavedViewValues(t *testing.T) {
	v := SavedView{Name: "east", Query: "region=%5B%22us-east%22%5D&sort=cpu%3Adesc"}
	vals, err := v.Values()
	if err != nil {
		t.Fatalf("Values: %v", err)
	}
	if got := vals.Get("region"); got != `["us-east"]` {
		t.Errorf("region = %q", got)
	}
	if got := vals.Get("sort"); got != "cpu:desc" {
		t.Errorf("sort = %q", got)
	}
}
