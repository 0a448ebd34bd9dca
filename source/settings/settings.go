// All this does is contain in one place the constants controlling which bits of the inner workings of the
// reader/compiler/store are displayed to me for debugging purposes. In a release they must all be set to false.

package settings

import "os"

const (
	// These do what it sounds like.
	SHOW_READER   = false
	SHOW_COMPILER = false // Traces every form the dispatcher sees, and every processor it hands it to.
	SHOW_IR       = false // Dumps the LLVM IR of each function once its body has been compiled.
	SHOW_STORE    = false

	SHOW_TESTS = true // Says whether the tests should say what is being tested, useful if one of them crashes and we don't know which.
)

const (
	DEFAULT_DB_DRIVER = "SQLite"
	DEFAULT_DB_DSN    = "" // No store unless we're asked for one.
	CORE_NAMESPACE    = "core"
)

// The configuration the driver runs with. There is nothing to configure about the compiler
// itself; this only says where function metadata gets persisted.
type Config struct {
	DbDriver string
	DbDSN    string
}

// Overlays the environment on the defaults.
func Load() Config {
	cfg := Config{DbDriver: DEFAULT_DB_DRIVER, DbDSN: DEFAULT_DB_DSN}
	if driver, ok := os.LookupEnv("TERN_DB_DRIVER"); ok && driver != "" {
		cfg.DbDriver = driver
	}
	if dsn, ok := os.LookupEnv("TERN_DB_DSN"); ok {
		cfg.DbDSN = dsn
	}
	return cfg
}

func (cfg Config) StoreEnabled() bool {
	return cfg.DbDSN != ""
}
