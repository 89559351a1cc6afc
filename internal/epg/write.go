// SPDX-License-Identifier: MIT

package epg

import (
	"encoding/xml"
	"fmt"
	"io"

	"github.com/google/renameio/v2"
)

const (
	xmlHeader = `<?xml version="1.0" encoding="UTF-8"?>` + "\n"
	doctype   = `<!DOCTYPE tv SYSTEM "xmltv.dtd">` + "\n"
)

// Encode serialises the document to w with the XML declaration and the
// XMLTV DOCTYPE reference.
func Encode(w io.Writer, tv *TV) error {
	out, err := xml.MarshalIndent(tv, "", "  ")
	if err != nil {
		return fmt.Errorf("epg: marshal document: %w", err)
	}
	if _, err := io.WriteString(w, xmlHeader+doctype); err != nil {
		return err
	}
	if _, err := w.Write(out); err != nil {
		return err
	}
	_, err = io.WriteString(w, "\n")
	return err
}

// WriteDocument writes the document to path atomically: the file is staged,
// fsynced and renamed into place so readers never observe a partial guide.
func WriteDocument(path string, tv *TV) error {
	pf, err := renameio.NewPendingFile(path)
	if err != nil {
		return fmt.Errorf("epg: create pending XMLTV file: %w", err)
	}
	defer func() {
		_ = pf.Cleanup()
	}()

	if err := Encode(pf, tv); err != nil {
		return fmt.Errorf("epg: write XMLTV data: %w", err)
	}
	if err := pf.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("epg: atomically replace XMLTV file: %w", err)
	}
	return nil
}
