// SPDX-FileCopyrightText: 2020 Pier Luigi Fiorini <pierluigi.fiorini@gmail.com>
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package repo

import (
	"fmt"
	"io"
	"os"

	"github.com/chilts/sid"
)

// writeFileAtomic writes data to a unique sibling file and renames it
// into place, so an interrupted writer never leaves a partial file.
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	tmp := fmt.Sprintf("%s.%s.tmp", path, sid.Id())

	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
	if err != nil {
		return err
	}

	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}

	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}

	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}

	return nil
}

func copyFile(source, destination string) error {
	src, err := os.Open(source)
	if err != nil {
		return err
	}
	defer src.Close()

	fi, err := src.Stat()
	if err != nil {
		return err
	}

	perm := fi.Mode() & os.ModePerm
	tmp := fmt.Sprintf("%s.%s.tmp", destination, sid.Id())
	dst, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
	if err != nil {
		return err
	}

	if _, err = io.Copy(dst, src); err != nil {
		dst.Close()
		os.Remove(tmp)
		return err
	}

	if err = dst.Close(); err != nil {
		os.Remove(tmp)
		return err
	}

	if err = os.Rename(tmp, destination); err != nil {
		os.Remove(tmp)
		return err
	}

	return nil
}
