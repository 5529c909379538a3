package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/inkveil/inkveil/internal/common"
	"github.com/inkveil/inkveil/internal/exportx"
	"github.com/inkveil/inkveil/internal/filex"
)

const (
	exportDirName     = "exports"
	defaultExportFile = "inkveil-export.json.gz"
)

// Export writes all entries to an export file. Usage: export [file] [enc].
// With "enc" the user is prompted for a passphrase and the file is
// encrypted; otherwise it is plain (compressed) and a warning is printed.
// Without an explicit file the export is staged under the exports
// subdirectory of the working directory.
func (a *App) Export(ctx context.Context, args []string) error {
	file := ""
	encrypted := false
	for _, arg := range args {
		if arg == "enc" {
			encrypted = true
		} else {
			file = arg
		}
	}
	if file == "" {
		dir, err := filex.EnsureSubDir(exportDirName)
		if err != nil {
			return err
		}
		file = filepath.Join(dir, defaultExportFile)
	}

	var passphrase []byte
	if encrypted {
		pw, err := getPassword(os.Stdout, "Enter export passphrase")
		if err != nil {
			return err
		}
		defer common.WipeByteArray(pw)
		passphrase = pw
	} else {
		printlnFn("Warning: the export file will contain your journal in plaintext.")
	}

	blob, err := a.exportService.Export(ctx, passphrase)
	if err != nil {
		return err
	}
	if err := os.WriteFile(file, blob, 0o600); err != nil {
		return fmt.Errorf("error writing export file: %w", err)
	}
	printlnFn("Exported to", file)
	return nil
}

// Import reads an export file and merges it into the journal. Usage:
// import <file> [all|new|replace]. An encrypted file prompts for the
// passphrase; the replace policy asks for explicit confirmation.
func (a *App) Import(ctx context.Context, args []string) error {
	file := args[0]
	policy := exportx.MergeImportAll
	if len(args) > 1 {
		switch args[1] {
		case "all":
			policy = exportx.MergeImportAll
		case "new":
			policy = exportx.MergeNewOnly
		case "replace":
			policy = exportx.MergeReplaceAll
		default:
			return fmt.Errorf("unknown merge policy %q", args[1])
		}
	}

	blob, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("error reading export file: %w", err)
	}

	confirmed := false
	if policy == exportx.MergeReplaceAll {
		answer, err := getSimpleText(a.reader, "This will DELETE all existing entries. Type 'yes' to continue", os.Stdout)
		if err != nil {
			return err
		}
		if strings.ToLower(answer) != "yes" {
			printlnFn("Import cancelled.")
			return nil
		}
		confirmed = true
	}

	n, err := a.importWithPassphrase(ctx, blob, policy, confirmed)
	if err != nil {
		return err
	}
	printlnFn(fmt.Sprintf("Imported %d entries", n))
	return nil
}

// importWithPassphrase tries a plain import first and prompts for a
// passphrase only when the file turns out to be encrypted.
func (a *App) importWithPassphrase(ctx context.Context, blob []byte, policy exportx.MergePolicy, confirmed bool) (int, error) {
	n, err := a.exportService.Import(ctx, blob, nil, policy, confirmed)
	if err == nil || !errors.Is(err, common.ErrPassphrase) {
		return n, err
	}

	pw, pwErr := getPassword(os.Stdout, "Enter export passphrase")
	if pwErr != nil {
		return 0, pwErr
	}
	defer common.WipeByteArray(pw)
	return a.exportService.Import(ctx, blob, pw, policy, confirmed)
}
