package backends

import (
	"context"

	"github.com/Lllllllleong/documentrouter/internal/models"
	"github.com/Lllllllleong/documentrouter/internal/pdf"
)

type fakeDoc struct {
	pages []string
	err   error
}

func (d fakeDoc) PageCount() int { return len(d.pages) }

func (d fakeDoc) PageText(_ context.Context, n int) (string, error) {
	if d.err != nil {
		return "", d.err
	}
	if n < 1 || n > len(d.pages) {
		return "", nil
	}
	return d.pages[n-1], nil
}

func (d fakeDoc) Metadata() models.Metadata {
	return models.Metadata{Title: "Unknown Title", Author: "Unknown Author", Subject: "Unknown Subject", PageCount: len(d.pages)}
}

type fakeReader struct {
	doc fakeDoc
	err error
}

func (r fakeReader) Open(string) (pdf.Document, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.doc, nil
}

type fakeRaster struct {
	png []byte
	err error
}

func (r fakeRaster) RenderPage(context.Context, string, int) ([]byte, error) {
	return r.png, r.err
}
