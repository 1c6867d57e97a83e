package bytesize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    ByteSize
		wantErr bool
	}{
		{name: "PlainNumber", input: "1024", want: 1024},
		{name: "Bytes", input: "512B", want: 512},
		{name: "BinaryKilo", input: "1Ki", want: 1024},
		{name: "BinaryKiloFull", input: "2KiB", want: 2048},
		{name: "BinaryMega", input: "500Mi", want: 500 * MiB},
		{name: "BinaryGiga", input: "1Gi", want: GiB},
		{name: "BinaryTera", input: "1TiB", want: TiB},
		{name: "DecimalKilo", input: "1K", want: 1000},
		{name: "DecimalMega", input: "100MB", want: 100 * MB},
		{name: "DecimalGiga", input: "2GB", want: 2 * GB},
		{name: "LowercaseUnit", input: "1gi", want: GiB},
		{name: "SurroundingWhitespace", input: "  1Gi  ", want: GiB},
		{name: "FractionalValue", input: "1.5Ki", want: 1536},
		{name: "FractionalMega", input: "0.5MiB", want: 512 * KiB},
		{name: "Empty", input: "", wantErr: true},
		{name: "WhitespaceOnly", input: "   ", wantErr: true},
		{name: "UnknownUnit", input: "10XB", wantErr: true},
		{name: "NoNumber", input: "GiB", wantErr: true},
		{name: "Garbage", input: "abc123", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUnmarshalText(t *testing.T) {
	var b ByteSize
	require.NoError(t, b.UnmarshalText([]byte("4MiB")))
	assert.Equal(t, 4*MiB, b)

	assert.Error(t, b.UnmarshalText([]byte("wat")))
}

func TestMarshalTextRoundTrip(t *testing.T) {
	original := 4 * GiB
	text, err := original.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "4GiB", string(text))

	var parsed ByteSize
	require.NoError(t, parsed.UnmarshalText(text))
	assert.Equal(t, original, parsed)
}

func TestString(t *testing.T) {
	tests := []struct {
		size ByteSize
		want string
	}{
		{size: 512, want: "512B"},
		{size: KiB, want: "1KiB"},
		{size: 1536, want: "1.5KiB"},
		{size: 4 * MiB, want: "4MiB"},
		{size: GiB, want: "1GiB"},
		{size: 2 * TiB, want: "2TiB"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.size.String())
	}
}

func TestConversions(t *testing.T) {
	b := ByteSize(2048)
	assert.Equal(t, uint64(2048), b.Uint64())
	assert.Equal(t, int64(2048), b.Int64())
}
