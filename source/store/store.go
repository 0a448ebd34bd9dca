package store

// The metadata store keeps the signatures of the functions each compilation unit defines, so
// that a later unit can declare them and call them without seeing their source.

import (
	"database/sql"
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/crypto/blake2b"

	"github.com/tern-lang/tern/source/report"
	"github.com/tern-lang/tern/source/settings"
	"github.com/tern-lang/tern/source/text"

	// SQL drivers

	_ "github.com/go-sql-driver/mysql"  // MariaDB & MySQL
	_ "github.com/lib/pq"               // Postgres
	_ "github.com/microsoft/go-mssqldb" // SQL Server
	_ "github.com/nakagami/firebirdsql" // Firebird
	_ "github.com/sijms/go-ora"         // Oracle
	_ "modernc.org/sqlite"              // SQLite
)

var (
	drivers = map[string]string{"Firebird SQL": "firebirdsql", "MariaDB": "mysql", "MySQL": "mysql",
		"Oracle": "oracle", "Postgres": "postgres", "SQLite": "sqlite", "SQL Server": "sqlserver"}
)

type Store struct {
	db     *sql.DB
	driver string // The database/sql name, not the one the user gave us.
}

// One row of the store. The types are in the form the reader reads, so that the compiler can
// parse them back.
type Record struct {
	Unit         string
	Name         string
	InternalName string
	Linkage      string
	ReturnType   string
	Params       string // e.g. ((a (p int32)) (b int32))
	Attrs        []string
	Fingerprint  string
}

func Open(driverName, dsn string) (*Store, error) {
	driver, ok := drivers[driverName]
	if !ok {
		return nil, report.Storage.New("no SQL driver called %v; %v", text.Emph(driverName), GetDriverOptions())
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, report.Storage.Wrap(err, "couldn't open %v database", driverName)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, report.Storage.Wrap(err, "couldn't connect to %v database", driverName)
	}
	// An in-memory SQLite database belongs to a connection, so we'd better have only the one.
	if driver == "sqlite" {
		db.SetMaxOpenConns(1)
	}
	st := &Store{db: db, driver: driver}
	if err := st.Migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return st, nil
}

func GetDriverOptions() string {
	return "the following SQL drivers are available: " + strings.Join(GetSortedDrivers(), ", ")
}

func GetSortedDrivers() []string {
	dr := []string{}
	for k := range drivers {
		dr = append(dr, k)
	}
	sort.Strings(dr)
	return dr
}

// Not every dialect we support has CREATE TABLE IF NOT EXISTS, so we find out for ourselves.
func (st *Store) Migrate() error {
	rows, err := st.db.Query("SELECT fingerprint FROM _Functions WHERE 1 = 0")
	if err == nil {
		rows.Close()
		return nil
	}
	query :=
		`CREATE TABLE _Functions (
    fingerprint varchar(64) NOT NULL,
    unit varchar(26),
    name varchar(255),
    internalName varchar(255),
    linkage varchar(16),
    returnType varchar(255),
    params varchar(1024),
    attrs varchar(255),
PRIMARY KEY (fingerprint))`
	if _, err := st.db.Exec(query); err != nil {
		return report.Storage.Wrap(err, "couldn't create the function table")
	}
	return nil
}

// Identifies a function by its name and the types it takes and returns, so that a unit which
// redefines a function replaces its row rather than adding another.
func Fingerprint(name, returnType string, paramTypes []string) string {
	sum := blake2b.Sum256([]byte(name + "|" + returnType + "|" + strings.Join(paramTypes, " ")))
	return hex.EncodeToString(sum[:])
}

func (st *Store) Save(r *Record) error {
	if settings.SHOW_STORE {
		println(text.GREEN + "    Saving " + r.Name + " " + r.Params + " as " + r.Fingerprint + text.RESET)
	}
	tx, err := st.db.Begin()
	if err != nil {
		return report.Storage.Wrap(err, "couldn't start transaction")
	}
	if _, err := tx.Exec("DELETE FROM _Functions WHERE fingerprint = "+st.placeholder(1), r.Fingerprint); err != nil {
		tx.Rollback()
		return report.Storage.Wrap(err, "couldn't replace %v", r.Name)
	}
	query := fmt.Sprintf(`INSERT INTO _Functions(fingerprint, unit, name, internalName, linkage, returnType, params, attrs)
	VALUES (%v)`, st.placeholders(8))
	if _, err := tx.Exec(query, r.Fingerprint, r.Unit, r.Name, r.InternalName, r.Linkage,
		r.ReturnType, r.Params, strings.Join(r.Attrs, " ")); err != nil {
		tx.Rollback()
		return report.Storage.Wrap(err, "couldn't save %v", r.Name)
	}
	if err := tx.Commit(); err != nil {
		return report.Storage.Wrap(err, "couldn't save %v", r.Name)
	}
	return nil
}

// Everything in the store, ordered by name and then by when it was saved.
func (st *Store) Load() ([]*Record, error) {
	rows, err := st.db.Query(
		`SELECT fingerprint, unit, name, internalName, linkage, returnType, params, attrs
FROM _Functions ORDER BY name, unit`)
	if err != nil {
		return nil, report.Storage.Wrap(err, "couldn't read the function table")
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		var r Record
		var attrs string
		if err := rows.Scan(&r.Fingerprint, &r.Unit, &r.Name, &r.InternalName, &r.Linkage,
			&r.ReturnType, &r.Params, &attrs); err != nil {
			return nil, report.Storage.Wrap(err, "couldn't read the function table")
		}
		r.Attrs = strings.Fields(attrs)
		records = append(records, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, report.Storage.Wrap(err, "couldn't read the function table")
	}
	return records, nil
}

func (st *Store) Close() error {
	return st.db.Close()
}

func (st *Store) placeholder(i int) string {
	switch st.driver {
	case "postgres":
		return "$" + strconv.Itoa(i)
	case "oracle":
		return ":" + strconv.Itoa(i)
	case "sqlserver":
		return "@p" + strconv.Itoa(i)
	}
	return "?"
}

func (st *Store) placeholders(n int) string {
	result := make([]string, n)
	for i := range result {
		result[i] = st.placeholder(i + 1)
	}
	return strings.Join(result, ", ")
}
