package tab

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriteCSV(t *testing.T) {
	table := New("Restaurant Name", "User Aggregate Rating", "Event Date")
	table.Append(Row{"Restaurant Name": "Alpha", "User Aggregate Rating": 4.0, "Event Date": "2019-03-02"})
	table.Append(Row{"Restaurant Name": `Beta, "the" bar`, "User Aggregate Rating": 3.6, "Event Date": NA})

	path := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, WriteCSV(path, table, "User Aggregate Rating"))

	b, err := os.ReadFile(path)
	require.NoError(t, err)

	want := "\xEF\xBB\xBF" +
		"Restaurant Name,User Aggregate Rating,Event Date\n" +
		"Alpha,4.0,2019-03-02\n" +
		"\"Beta, \"\"the\"\" bar\",3.6,NA\n"
	require.Equal(t, want, string(b))
}

func TestWriteCSVCreatesDirectories(t *testing.T) {
	table := New("a")
	table.Append(Row{"a": "x"})
	path := filepath.Join(t.TempDir(), "nested", "deep", "out.csv")
	require.NoError(t, WriteCSV(path, table))
	_, err := os.Stat(path)
	require.NoError(t, err)
}

func TestReadCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.csv")
	content := "\xEF\xBB\xBFa,b,c\n1,two,3\nshort\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	table, err := ReadCSV(path)
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b", "c"}, table.Columns)
	require.Equal(t, 2, table.Len())
	require.Equal(t, Row{"a": "1", "b": "two", "c": "3"}, table.Rows[0])
	// short records pad with empty cells
	require.Equal(t, Row{"a": "short", "b": "", "c": ""}, table.Rows[1])
}

func TestReadCSVRoundTrip(t *testing.T) {
	table := New("id", "name")
	table.Append(Row{"id": "1", "name": "Alpha"})
	table.Append(Row{"id": "2", "name": "Beta, with comma"})

	path := filepath.Join(t.TempDir(), "round.csv")
	require.NoError(t, WriteCSV(path, table))

	back, err := ReadCSV(path)
	require.NoError(t, err)
	require.Equal(t, table.Columns, back.Columns)
	require.Equal(t, table.Rows, back.Rows)
}

func TestReadCSVEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	require.NoError(t, os.WriteFile(path, nil, 0o644))
	_, err := ReadCSV(path)
	var schemaErr *SchemaError
	require.ErrorAs(t, err, &schemaErr)
}
