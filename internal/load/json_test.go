package load

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/nao1215/datapull/internal/model"
)

// TestDecodeJSON_ObjectLayouts decodes each object-shaped layout in turn.
// The subtests run sequentially so a failure is reported against its layout.
func TestDecodeJSON_ObjectLayouts(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    *model.Frame
		wantErr error
	}{
		{
			name:    "split columns",
			content: `{"a":[1,2],"b":["x",null]}`,
			want: &model.Frame{
				Columns: []string{"a", "b"},
				Rows:    [][]any{{int64(1), "x"}, {int64(2), nil}},
			},
		},
		{
			name:    "single label-keyed column",
			content: `{"a":{"0":1}}`,
			want: &model.Frame{
				Columns: []string{"a"},
				Rows:    [][]any{{int64(1)}},
			},
		},
		{
			name:    "labels keep first-seen order",
			content: `{"a":{"r2":1,"r1":2},"b":{"r1":"y","r3":"z"}}`,
			want: &model.Frame{
				Columns: []string{"a", "b"},
				Rows:    [][]any{{int64(1), nil}, {int64(2), "y"}, {nil, "z"}},
			},
		},
		{
			name:    "scalar column is rejected",
			content: `{"a":1}`,
			wantErr: ErrUnsupportedJSON,
		},
		{
			name:    "empty object has no columns",
			content: `{}`,
			wantErr: ErrNoColumns,
		},
		{
			name:    "records",
			content: `[{"a":1},{"b":true}]`,
			want: &model.Frame{
				Columns: []string{"a", "b"},
				Rows:    [][]any{{int64(1), nil}, {nil, true}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeJSON([]byte(tt.content))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("frame mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

// TestDecodeJSON_ScalarColumnNamesColumn tests that the error names the column.
func TestDecodeJSON_ScalarColumnNamesColumn(t *testing.T) {
	_, err := decodeJSON([]byte(`{"tweets":[1],"user":"alice"}`))
	if err == nil {
		t.Fatal("expected error for scalar column")
	}
	if want := `unsupported JSON layout: column "user" is a scalar`; err.Error() != want {
		t.Errorf("error = %q, want %q", err.Error(), want)
	}
}
