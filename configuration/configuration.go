package configuration

type Configuration struct {
	Action      string `usage:"one of: create, keys, dump, describe, merge, delete"`
	Path        string `usage:"record store path"`
	Kind        string `usage:"storage kind: bolt, file, archive or memory"`
	Description string `usage:"store description (create, describe)"`
	Compression bool   `usage:"compress record payloads with zstd (create)"`
	Ingest      string `usage:"directory whose files are inserted as records (create)"`
	Out         string `usage:"output directory for dumped records (dump)"`
	Sources     string `usage:"comma-separated source store paths (merge)"`
	Version     bool   `usage:"show version and exit"`
}

func Default() Configuration {
	return Configuration{
		Kind: "bolt",
		Out:  ".",
	}
}
