package main

import (
	"context"
	"flag"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/basaknazik/itudam/internal/catalog"
	"github.com/basaknazik/itudam/internal/config"
	"github.com/basaknazik/itudam/internal/export"
	"github.com/basaknazik/itudam/internal/sftpclient"
	"github.com/basaknazik/itudam/internal/source"
)

func main() {
	var (
		inPath     = flag.String("in", "dumps", "raw dump file or directory of per-subject dumps")
		outDir     = flag.String("out", ".", "output directory for catalog artifacts")
		crnList    = flag.Bool("crns", false, "also write a plain CRN list (crns.txt)")
		uploadSFTP = flag.Bool("sftp", false, "upload the generated artifacts via SFTP")
	)
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	cfg := config.Load()

	if *outDir != "." && *outDir != "" {
		if err := os.MkdirAll(*outDir, 0o755); err != nil {
			log.Fatal(err)
		}
	}

	src := pickSource(*inPath, cfg.LoaderWorkers)

	records, err := src.ListRecords(ctx)
	if err != nil {
		log.Fatalf("load %s: %v", src.Name(), err)
	}
	log.Printf("loaded %d raw records from %s", len(records), src.Name())

	cat := catalog.Normalize(records, cfg.SeniorMarkers)

	catalogPath := filepath.Join(*outDir, cfg.CatalogPath)
	subjectsPath := filepath.Join(*outDir, cfg.SubjectsPath)
	brPath := catalogPath + ".br"

	writeArtifact(catalogPath, func(w io.Writer) error {
		return export.WriteCatalogJSON(w, cat.Courses())
	})
	writeArtifact(subjectsPath, func(w io.Writer) error {
		return export.WriteSubjectsJSON(w, cat.Subjects())
	})
	writeArtifact(brPath, func(w io.Writer) error {
		return export.WriteCatalogBrotli(w, cat.Courses())
	})

	artifacts := []string{catalogPath, subjectsPath, brPath}

	if *crnList {
		crnPath := filepath.Join(*outDir, "crns.txt")
		crns := make([]string, 0, cat.Len())
		for _, c := range cat.Courses() {
			crns = append(crns, c.CRN)
		}
		writeArtifact(crnPath, func(w io.Writer) error {
			return export.WriteCRNList(w, crns)
		})
		artifacts = append(artifacts, crnPath)
	}

	log.Printf("wrote %d courses across %d subjects to %s", cat.Len(), len(cat.Subjects()), *outDir)

	if *uploadSFTP {
		upCfg := sftpclient.Config{
			Host:                  cfg.SFTPHost,
			Port:                  cfg.SFTPPort,
			User:                  cfg.SFTPUser,
			Pass:                  cfg.SFTPPass,
			RemoteDir:             cfg.SFTPDir,
			InsecureIgnoreHostKey: cfg.SFTPInsecureIgnoreHostKey,
		}
		if err := sftpclient.PublishFiles(ctx, upCfg, artifacts); err != nil {
			log.Fatalf("sftp upload: %v", err)
		}
		log.Printf("uploaded %d artifacts to %s", len(artifacts), upCfg.RemoteDir)
	}
}

func writeArtifact(path string, write func(io.Writer) error) {
	f, err := os.Create(path)
	if err != nil {
		log.Fatal(err)
	}
	if err := write(f); err != nil {
		f.Close()
		log.Fatal(err)
	}
	if err := f.Close(); err != nil {
		log.Fatal(err)
	}
}

func pickSource(path string, workers int) source.RecordSource {
	info, err := os.Stat(path)
	if err != nil {
		log.Fatalf("stat %s: %v", path, err)
	}
	if info.IsDir() {
		return source.DirSource{Dir: path, MaxWorkers: workers}
	}
	return source.FileSource{Path: path}
}
