//go:build android

package db

// gomobile cross-compiles without a C toolchain for sqlite3, so Android
// builds use the pure-Go driver.
import _ "modernc.org/sqlite"

const driverName = "sqlite"

func dsn(path string) string {
	return "file:" + path + "?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)"
}
