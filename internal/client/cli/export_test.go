package cli

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/inkveil/inkveil/internal/exportx"
)

type fakeExportService struct {
	blob      []byte
	exportErr error
	imported  int
	importErr error
	gotPolicy exportx.MergePolicy
}

func (f *fakeExportService) Export(ctx context.Context, passphrase []byte) ([]byte, error) {
	return f.blob, f.exportErr
}

func (f *fakeExportService) Import(ctx context.Context, blob, passphrase []byte, policy exportx.MergePolicy, confirmedReplace bool) (int, error) {
	f.gotPolicy = policy
	return f.imported, f.importErr
}

func muteOutput(t *testing.T) {
	t.Helper()
	orig := printlnFn
	printlnFn = func(a ...any) (int, error) { return 0, nil }
	t.Cleanup(func() { printlnFn = orig })
}

func TestExport_StagesUnderExportsDirByDefault(t *testing.T) {
	muteOutput(t)
	t.Chdir(t.TempDir())

	app := &App{exportService: &fakeExportService{blob: []byte("export blob")}}
	require.NoError(t, app.Export(context.Background(), nil))

	data, err := os.ReadFile(filepath.Join(exportDirName, defaultExportFile))
	require.NoError(t, err)
	require.Equal(t, []byte("export blob"), data)
}

func TestExport_ExplicitFileSkipsStagingDir(t *testing.T) {
	muteOutput(t)
	dir := t.TempDir()
	t.Chdir(dir)

	app := &App{exportService: &fakeExportService{blob: []byte("x")}}
	require.NoError(t, app.Export(context.Background(), []string{"my-backup.gz"}))

	require.FileExists(t, filepath.Join(dir, "my-backup.gz"))
	require.NoDirExists(t, filepath.Join(dir, exportDirName))
}
