// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// upload.go - Service manual ingestion.
package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/jeranaias/wrench-tui/internal/api"
	"github.com/jeranaias/wrench-tui/internal/request"
)

// HandleUpload sends the given PDFs in one request.
func HandleUpload(ctx context.Context, rt *Runtime, args Args) error {
	paths, err := selectPDFs(args.Files)
	if err != nil {
		return err
	}

	files, err := api.ReadFiles(paths)
	if err != nil {
		return err
	}

	if !args.JSON && !args.Quiet {
		fmt.Fprintf(rt.Stderr, "Uploading %d file(s) to %s...\n", len(files), rt.Endpoint.BaseURL())
	}
	res, err := rt.Client.UploadManuals(ctx, files)
	if err != nil {
		return failWith(err, request.FallbackUpload)
	}
	rt.Logger.Info("manuals uploaded", "files", len(files), "chunks", res.IngestedCount)

	if args.JSON {
		return NewJSONResponse("upload", UploadData{Files: api.Names(files), Result: res}).Write(rt.Stdout)
	}
	fmt.Fprintln(rt.Stdout, rt.style(SuccessStyle.Render, "[OK]")+" "+res.Summary())
	return nil
}

// selectPDFs checks the selection: at least one path, every one a .pdf.
// Repeated paths are sent once.
func selectPDFs(paths []string) ([]string, error) {
	if len(paths) == 0 {
		return nil, ErrMissingArgument("files", "wrench upload camry-2018-service.pdf")
	}

	seen := make(map[string]bool, len(paths))
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if !strings.EqualFold(filepath.Ext(p), ".pdf") {
			return nil, NewValidationError("file", p, "only PDF files can be uploaded")
		}
		if seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out, nil
}
