package release

import (
	"archive/tar"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ontora-ai/pipelines/errors"
)

// createArchive writes a gzip-compressed tarball of srcDir to destPath.
// A missing or empty srcDir still produces a valid empty archive, keeping
// the artifact contract intact when a track had nothing to package.
func createArchive(srcDir, destPath string) error {
	out, err := os.Create(destPath)
	if err != nil {
		return errors.Wrap(err, errors.CodeStorage, "failed to create archive file")
	}
	defer out.Close()

	gw := gzip.NewWriter(out)
	tw := tar.NewWriter(gw)

	if _, statErr := os.Stat(srcDir); statErr == nil {
		if walkErr := addTree(tw, srcDir); walkErr != nil {
			tw.Close()
			gw.Close()
			return walkErr
		}
	}

	if err := tw.Close(); err != nil {
		return errors.Wrap(err, errors.CodeStorage, "failed to finalize archive")
	}
	if err := gw.Close(); err != nil {
		return errors.Wrap(err, errors.CodeStorage, "failed to finalize archive")
	}
	return nil
}

func addTree(tw *tar.Writer, root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}

		header, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return err
		}
		header.Name = strings.ReplaceAll(rel, string(filepath.Separator), "/")
		if info.IsDir() {
			header.Name += "/"
		}

		if err := tw.WriteHeader(header); err != nil {
			return err
		}
		if info.IsDir() || !info.Mode().IsRegular() {
			return nil
		}

		file, err := os.Open(path)
		if err != nil {
			return err
		}
		defer file.Close()

		_, err = io.Copy(tw, file)
		return err
	})
}
