package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Catalog
	CatalogPath   string
	SubjectsPath  string
	SeniorMarkers []string

	// Local persistence
	DataDir   string
	Namespace string

	// Remote document store
	RemoteBaseURL string
	RemoteToken   string
	Debounce      time.Duration

	// Raw-dump loading
	LoaderWorkers int

	// Artifact publishing
	SFTPHost                  string
	SFTPPort                  int
	SFTPUser                  string
	SFTPPass                  string
	SFTPDir                   string
	SFTPInsecureIgnoreHostKey bool
}

func Load() Config {
	return Config{
		CatalogPath:   getenv("ITUDAM_CATALOG", "catalog.json"),
		SubjectsPath:  getenv("ITUDAM_SUBJECTS", "subjects.json"),
		SeniorMarkers: splitList(getenv("ITUDAM_SENIOR_MARKERS", "Detay,Detail")),

		DataDir:   getenv("ITUDAM_DATA_DIR", ".itudam"),
		Namespace: getenv("ITUDAM_NAMESPACE", "itudam"),

		RemoteBaseURL: getenv("ITUDAM_REMOTE_URL", ""),
		RemoteToken:   os.Getenv("ITUDAM_REMOTE_TOKEN"),
		Debounce:      time.Duration(getenvInt("ITUDAM_DEBOUNCE_MS", 3000)) * time.Millisecond,

		LoaderWorkers: getenvInt("ITUDAM_LOADER_WORKERS", 8),

		SFTPHost:                  os.Getenv("SFTP_HOST"),
		SFTPPort:                  getenvInt("SFTP_PORT", 22),
		SFTPUser:                  os.Getenv("SFTP_USER"),
		SFTPPass:                  os.Getenv("SFTP_PASS"),
		SFTPDir:                   getenv("SFTP_DIR", "/site"),
		SFTPInsecureIgnoreHostKey: getenvBool("SFTP_INSECURE_IGNORE_HOSTKEY", true),
	}
}

func getenv(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func getenvInt(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getenvBool(k string, def bool) bool {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
