package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/oleg578/strictcsv"
	"github.com/oleg578/strictcsv/export"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestCheckFile(t *testing.T) {
	t.Parallel()

	good := writeTemp(t, "good.csv", "Year,Make\r\n1997,Ford\r\n")
	bad := writeTemp(t, "bad.csv", "Year,Make\n\"1997\" ,Ford")

	var out bytes.Buffer
	require.NoError(t, checkFile(&out, nil, good, "auto"))
	assert.Equal(t, good+": ok (2 rows x 2 fields)\n", out.String())

	out.Reset()
	err := checkFile(&out, nil, bad, "auto")
	assert.ErrorIs(t, err, strictcsv.ErrTrailingText)
	assert.Equal(t, bad+":2:7: "+strictcsv.ErrTrailingText.Error()+"\n", out.String())

	out.Reset()
	err = checkFile(&out, nil, filepath.Join(t.TempDir(), "missing.csv"), "auto")
	assert.Error(t, err)
	assert.False(t, strictcsv.IsParseError(err))
	assert.Empty(t, out.String())
}

func TestWriteCanonical(t *testing.T) {
	t.Parallel()

	table, err := strictcsv.Parse("a,\"b\"\n\"c,d\",e\n")
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, writeCanonical(&out, table))
	assert.Equal(t, "a,b\r\n\"c,d\",e", out.String())
}

func TestConvertTable(t *testing.T) {
	t.Parallel()

	table := strictcsv.Table{{"name", "qty"}, {"apple", "3"}}

	var out bytes.Buffer
	require.NoError(t, convertTable(&out, table, "JSON", export.Options{Header: true}))
	var records []map[string]string
	require.NoError(t, json.Unmarshal(out.Bytes(), &records))
	assert.Equal(t, []map[string]string{{"name": "apple", "qty": "3"}}, records)

	out.Reset()
	require.NoError(t, convertTable(&out, table, "yml", export.Options{}))
	var rows [][]string
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &rows))
	assert.Equal(t, [][]string{{"name", "qty"}, {"apple", "3"}}, rows)

	out.Reset()
	require.NoError(t, convertTable(&out, table, "parquet", export.Options{Header: true}))
	assert.True(t, bytes.HasPrefix(out.Bytes(), []byte("PAR1")))

	assert.ErrorContains(t, convertTable(&out, table, "xlsx", export.Options{}), "unknown format")
}

// The commands share global flag state, so each is executed once, serially.
func TestRootCommand(t *testing.T) {
	good := writeTemp(t, "good.csv", "a,b\n")
	bad := writeTemp(t, "bad.csv", "a,b\nc")

	t.Run("check", func(t *testing.T) {
		var out bytes.Buffer
		rootCmd.SetOut(&out)
		rootCmd.SetErr(&bytes.Buffer{})
		rootCmd.SetArgs([]string{"check", good, bad})

		err := rootCmd.Execute()
		assert.ErrorIs(t, err, errCheckFailed)
		assert.Contains(t, out.String(), good+": ok (1 rows x 2 fields)")
		assert.Contains(t, out.String(), bad+":2:1: "+strictcsv.ErrFieldCount.Error())
	})

	t.Run("checkContinuesAfterUnreadableFile", func(t *testing.T) {
		missing := filepath.Join(t.TempDir(), "missing.csv")
		var out, errOut bytes.Buffer
		rootCmd.SetOut(&out)
		rootCmd.SetErr(&errOut)
		rootCmd.SetArgs([]string{"check", missing, good})

		err := rootCmd.Execute()
		assert.ErrorIs(t, err, errCheckFailed)
		assert.Equal(t, good+": ok (1 rows x 2 fields)\n", out.String())
		assert.Contains(t, errOut.String(), missing+": reading input:")
	})

	t.Run("fmt", func(t *testing.T) {
		outPath := filepath.Join(t.TempDir(), "out.csv")
		rootCmd.SetIn(strings.NewReader("\xEF\xBB\xBFx,\"y\"\n1,2\n"))
		rootCmd.SetOut(&bytes.Buffer{})
		rootCmd.SetErr(&bytes.Buffer{})
		rootCmd.SetArgs([]string{"fmt", "-o", outPath})

		require.NoError(t, rootCmd.Execute())
		got, err := os.ReadFile(outPath)
		require.NoError(t, err)
		assert.Equal(t, "x,y\r\n1,2", string(got))
	})

	t.Run("convert", func(t *testing.T) {
		var out bytes.Buffer
		rootCmd.SetIn(strings.NewReader(""))
		rootCmd.SetOut(&out)
		rootCmd.SetErr(&bytes.Buffer{})
		rootCmd.SetArgs([]string{"convert", "--to", "json", good})

		require.NoError(t, rootCmd.Execute())
		var rows [][]string
		require.NoError(t, json.Unmarshal(out.Bytes(), &rows))
		assert.Equal(t, [][]string{{"a", "b"}}, rows)
	})

	t.Run("convertVerbose", func(t *testing.T) {
		var out, errOut bytes.Buffer
		rootCmd.SetOut(&out)
		rootCmd.SetErr(&errOut)
		rootCmd.SetArgs([]string{"convert", "-v", "--to", "json", good})

		require.NoError(t, rootCmd.Execute())
		assert.Equal(t, "[convert] "+good+": 1 rows x 2 fields -> json (header=false)\n", errOut.String())
		assert.NotEmpty(t, out.String())
	})

	t.Run("convertHeaderFromEnv", func(t *testing.T) {
		t.Setenv("STRICTCSV_HEADER", "true")
		records := writeTemp(t, "records.csv", "zeta,alpha\r\n1,2")

		var out bytes.Buffer
		rootCmd.SetOut(&out)
		rootCmd.SetErr(&bytes.Buffer{})
		rootCmd.SetArgs([]string{"convert", "--to", "json", records})

		require.NoError(t, rootCmd.Execute())
		var got []map[string]string
		require.NoError(t, json.Unmarshal(out.Bytes(), &got))
		assert.Equal(t, []map[string]string{{"zeta": "1", "alpha": "2"}}, got)
		assert.Less(t, strings.Index(out.String(), "zeta"), strings.Index(out.String(), "alpha"))
	})

	t.Run("convertFailureLeavesNoOutput", func(t *testing.T) {
		outPath := filepath.Join(t.TempDir(), "out.json")
		rootCmd.SetOut(&bytes.Buffer{})
		rootCmd.SetErr(&bytes.Buffer{})
		rootCmd.SetArgs([]string{"convert", "--to", "xlsx", "-o", outPath, good})

		assert.ErrorContains(t, rootCmd.Execute(), "unknown format")
		_, err := os.Stat(outPath)
		assert.True(t, os.IsNotExist(err))
	})
}
