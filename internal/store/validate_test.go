package store

import (
	"errors"
	"testing"
)

func TestValidateEmbedding(t *testing.T) {
	tests := []struct {
		name    string
		dims    int
		wantErr bool
	}{
		{"nil", -1, false},
		{"exact", EmbeddingDim, false},
		{"one_short", EmbeddingDim - 1, true},
		{"one_long", EmbeddingDim + 1, true},
		{"empty_non_nil", 0, true},
		{"tiny", 3, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var emb []float32
			if tt.dims >= 0 {
				emb = make([]float32, tt.dims)
			}
			err := ValidateEmbedding(emb)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateEmbedding(%d dims) error = %v, wantErr %v", tt.dims, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidEmbedding) {
				t.Errorf("ValidateEmbedding(%d dims) error = %v, want ErrInvalidEmbedding", tt.dims, err)
			}
		})
	}
}

func TestValidateNodeID(t *testing.T) {
	if err := ValidateNodeID(""); err == nil {
		t.Error("ValidateNodeID(\"\") = nil, want error")
	}
	if err := ValidateNodeID("alice"); err != nil {
		t.Errorf("ValidateNodeID(\"alice\") = %v, want nil", err)
	}
}
