package employee

import (
	"errors"
	"testing"
)

func TestEncodePhoto(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		payload string
		want    string
		wantNil bool
		wantErr error
	}{
		{name: "empty", payload: "", wantNil: true},
		{name: "blank", payload: "   ", wantNil: true},
		{name: "raw base64", payload: "aGVsbG8=", want: "data:image/png;base64,aGVsbG8="},
		{name: "data uri", payload: "data:image/jpeg;base64,aGVsbG8=", want: "data:image/png;base64,aGVsbG8="},
		{name: "invalid base64", payload: "not base64!!", wantErr: ErrMalformedImage},
		{name: "data uri without base64", payload: "data:text/plain,hello", wantErr: ErrMalformedImage},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := EncodePhoto(tt.payload)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("EncodePhoto returned error: %v", err)
			}
			if tt.wantNil {
				if got != nil {
					t.Fatalf("expected nil photo, got %q", *got)
				}
				return
			}
			if got == nil || *got != tt.want {
				t.Fatalf("expected %q, got %v", tt.want, got)
			}
		})
	}
}
