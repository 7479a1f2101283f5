// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package notebook

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantTypes []string
		wantCode  []string
	}{
		{
			name: "mixed cells keep order",
			input: `{"cells":[
				{"cell_type":"markdown","source":"# Title"},
				{"cell_type":"code","source":["print(1)"]},
				{"cell_type":"raw","source":"raw text"},
				{"cell_type":"code","source":["print(2)"]}
			]}`,
			wantTypes: []string{"markdown", "code", "raw", "code"},
			wantCode:  []string{"print(1)", "print(2)"},
		},
		{
			name:      "fragments are concatenated without separator",
			input:     `{"cells":[{"cell_type":"code","source":["a = 1\n","b = 2"]}]}`,
			wantTypes: []string{"code"},
			wantCode:  []string{"a = 1\nb = 2"},
		},
		{
			name:      "plain string source",
			input:     `{"cells":[{"cell_type":"code","source":"x = 5"}]}`,
			wantTypes: []string{"code"},
			wantCode:  []string{"x = 5"},
		},
		{
			name:      "empty source list",
			input:     `{"cells":[{"cell_type":"code","source":[]}]}`,
			wantTypes: []string{"code"},
			wantCode:  []string{""},
		},
		{
			name:      "empty cells",
			input:     `{"cells":[]}`,
			wantTypes: []string{},
			wantCode:  []string{},
		},
		{
			name:      "absent cell_type is excluded",
			input:     `{"cells":[{"source":"orphan"},{"cell_type":"code","source":"kept"}]}`,
			wantTypes: []string{"", "code"},
			wantCode:  []string{"kept"},
		},
		{
			name:      "non-string cell_type is excluded",
			input:     `{"cells":[{"cell_type":7,"source":"seven"}]}`,
			wantTypes: []string{""},
			wantCode:  []string{},
		},
		{
			name:      "markdown source is not inspected",
			input:     `{"cells":[{"cell_type":"markdown","source":42},{"cell_type":"markdown"}]}`,
			wantTypes: []string{"markdown", "markdown"},
			wantCode:  []string{},
		},
		{
			name:      "cell_type match is case sensitive",
			input:     `{"cells":[{"cell_type":"Code","source":"no"}]}`,
			wantTypes: []string{"Code"},
			wantCode:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Decode([]byte(tt.input))
			require.NoError(t, err)

			types := make([]string, len(doc.Cells))
			for i, c := range doc.Cells {
				types[i] = c.Type
			}
			assert.Equal(t, tt.wantTypes, types)
			assert.Equal(t, tt.wantCode, doc.CodeSources())
		})
	}
}

func TestDecode_SourceKind(t *testing.T) {
	doc, err := Decode([]byte(`{"cells":[
		{"cell_type":"code","source":"x = 5"},
		{"cell_type":"code","source":["x = 5"]}
	]}`))
	require.NoError(t, err)
	require.Len(t, doc.Cells, 2)

	assert.Equal(t, StringSource, doc.Cells[0].Source.Kind)
	assert.Equal(t, FragmentListSource, doc.Cells[1].Source.Kind)
	assert.Equal(t, doc.Cells[0].Source.Text(), doc.Cells[1].Source.Text())
}

func TestDecode_Malformed(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		errMsg string
	}{
		{name: "missing cells", input: `{"metadata":{}}`, errMsg: `missing "cells"`},
		{name: "null cells", input: `{"cells":null}`, errMsg: `"cells" is not a list`},
		{name: "cells is an object", input: `{"cells":{"a":1}}`, errMsg: `"cells" is not a list`},
		{name: "cells is a string", input: `{"cells":"code"}`, errMsg: `"cells" is not a list`},
		{name: "document is a list", input: `[{"cell_type":"code"}]`, errMsg: "not a JSON object"},
		{name: "cell is not an object", input: `{"cells":["print(1)"]}`, errMsg: "cell 0"},
		{name: "code cell without source", input: `{"cells":[{"cell_type":"code"}]}`, errMsg: "no source"},
		{name: "code cell with null source", input: `{"cells":[{"cell_type":"code","source":null}]}`, errMsg: "string or a list"},
		{name: "code cell with numeric source", input: `{"cells":[{"cell_type":"code","source":3}]}`, errMsg: "string or a list"},
		{name: "non-string fragment", input: `{"cells":[{"cell_type":"code","source":["a",1]}]}`, errMsg: "fragment 1"},
		{name: "null fragment", input: `{"cells":[{"cell_type":"code","source":["a",null]}]}`, errMsg: "fragment 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.input))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformed)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestDecode_SyntaxErrors(t *testing.T) {
	for _, input := range []string{``, `{`, `{"cells":[}`, `not json`} {
		_, err := Decode([]byte(input))
		require.Error(t, err, "input %q", input)
		assert.NotErrorIs(t, err, ErrMalformed, "input %q", input)
	}
}

func TestDecode_InvalidUTF8(t *testing.T) {
	_, err := Decode([]byte("{\"cells\":[{\"cell_type\":\"code\",\"source\":\"\xff\"}]}"))
	assert.ErrorIs(t, err, ErrInvalidUTF8)
}

func TestDocument_Extension(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "declared extension",
			input: `{"cells":[],"metadata":{"language_info":{"name":"julia","file_extension":".jl"}}}`,
			want:  ".jl",
		},
		{
			name:  "no metadata",
			input: `{"cells":[]}`,
			want:  DefaultFileExtension,
		},
		{
			name:  "path-like extension is ignored",
			input: `{"cells":[],"metadata":{"language_info":{"file_extension":"../../etc/x"}}}`,
			want:  DefaultFileExtension,
		},
		{
			name:  "metadata with unexpected shape",
			input: `{"cells":[],"metadata":"legacy"}`,
			want:  DefaultFileExtension,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc, err := Decode([]byte(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.want, doc.Extension())
		})
	}
}
