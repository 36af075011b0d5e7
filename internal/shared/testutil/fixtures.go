package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// SampleCSV has a key column, one metadata column and three measurements
const SampleCSV = `id,group,m1,m2,m3
s1,a,1,2,7
s2,b,2,2,4
s3,a,3,6,1
`

// MissingValuesCSV has one empty measurement cell in column m2
const MissingValuesCSV = `id,m1,m2
s1,1,4
s2,2,
s3,3,10
`

// DuplicateKeysCSV repeats the sample key s1
const DuplicateKeysCSV = `id,m1
s1,1
s1,2
s2,3
`

// MetadataOnlyCSV has no numeric column
const MetadataOnlyCSV = `id,group
s1,a
s2,b
`

// ZeroSampleCSV has a sample whose values sum to zero
const ZeroSampleCSV = `id,m1,m2
s1,0,0
s2,1,2
`

// TabSeparated is SampleCSV with tab delimiters
const TabSeparated = "id\tgroup\tm1\tm2\tm3\ns1\ta\t1\t2\t7\ns2\tb\t2\t2\t4\ns3\ta\t3\t6\t1\n"

// WriteTempFile writes content to a file named name in a test temp dir
// and returns its path
func WriteTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write fixture %s: %v", name, err)
	}
	return path
}
