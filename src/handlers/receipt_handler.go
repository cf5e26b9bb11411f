package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"cashlytic-server/src/apperr"
	"cashlytic-server/src/models"
	"cashlytic-server/src/receipt"
	"cashlytic-server/src/util"
)

type ReceiptScanner interface {
	Extract(ctx context.Context, image []byte, mimeType string) (*models.ScannedReceipt, error)
}

// ScanReceipt reads the multipart field "file" and returns the extracted
// fields for the client to confirm. Nothing is persisted.
func ScanReceipt(scanner ReceiptScanner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, receipt.MaxImageSize+(1<<20))
		file, header, err := r.FormFile("file")
		if err != nil {
			util.WriteError(w, r, apperr.Validation("receipt image is required"))
			return
		}
		defer file.Close()

		image, err := io.ReadAll(io.LimitReader(file, receipt.MaxImageSize+1))
		if err != nil {
			util.WriteError(w, r, apperr.Validation("could not read receipt image"))
			return
		}
		mimeType := header.Header.Get("Content-Type")
		if mimeType == "" || mimeType == "application/octet-stream" {
			mimeType = http.DetectContentType(image)
		}

		scanned, err := scanner.Extract(r.Context(), image, mimeType)
		if errors.Is(err, receipt.ErrModelUnavailable) {
			util.WriteMessage(w, http.StatusServiceUnavailable, util.MsgExtractionFailed)
			return
		}
		if err != nil {
			util.WriteError(w, r, err)
			return
		}
		util.WriteJSON(w, http.StatusOK, scanned)
	}
}
