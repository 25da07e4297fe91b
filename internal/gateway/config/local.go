package config

import "path/filepath"

type defaults struct {
	HistoryPath   string
	MinioEndpoint string
	Bucket        string
}

func defaultsFor(env string) defaults {
	d := defaults{
		HistoryPath: filepath.Join("tmp", "setup_history.json"),
		Bucket:      "accsetup-exports",
	}
	if env == "local" {
		d.MinioEndpoint = "minio:9000"
	}
	return d
}
