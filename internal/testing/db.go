// Package testing provides testing utilities and helpers for the wealthdesk project.
package testing

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/masterc/wealthdesk/internal/database"
)

// ReplicaSchema mirrors the tables of the exported replica that the analytics read
const ReplicaSchema = `
CREATE TABLE mariadb_clients (
	id INTEGER PRIMARY KEY,
	nom TEXT,
	prenom TEXT,
	SRRI INTEGER
);
CREATE TABLE mariadb_affaires (
	id INTEGER PRIMARY KEY,
	id_personne INTEGER,
	ref TEXT,
	date_debut TEXT,
	date_cle TEXT,
	SRRI INTEGER,
	"Frais courtier" REAL
);
CREATE TABLE mariadb_historique_personne_w (
	id INTEGER,
	date TEXT,
	valo REAL,
	mouvement REAL,
	sicav REAL,
	perf_sicav_hebdo REAL,
	perf_sicav_52 REAL,
	volat REAL,
	SRRI INTEGER,
	"Année" INTEGER
);
CREATE TABLE mariadb_historique_affaire_w (
	id INTEGER,
	date TEXT,
	valo REAL,
	mouvement REAL,
	sicav REAL,
	perf_sicav_hebdo REAL,
	perf_sicav_52 REAL,
	volat REAL,
	"Année" INTEGER
);
CREATE TABLE mariadb_support (
	id INTEGER PRIMARY KEY,
	code_isin TEXT,
	nom TEXT,
	cat_gene TEXT,
	cat_principale TEXT,
	cat_det TEXT,
	cat_geo TEXT,
	promoteur TEXT,
	"Taux rétro" REAL,
	SRRI INTEGER
);
CREATE TABLE mariadb_historique_support_w (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	modif_quand TEXT,
	source TEXT,
	id_source INTEGER,
	date TEXT,
	id_support TEXT,
	nbuc REAL,
	vl REAL,
	prmp REAL,
	valo REAL
);
CREATE TABLE donnees_esg_etendu (
	Isin TEXT,
	nom TEXT,
	intensite_carbone REAL,
	part_verte REAL,
	noteE TEXT,
	noteS TEXT,
	noteG TEXT
);
CREATE TABLE allocations (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	nom TEXT,
	date TEXT,
	sicav REAL
);
CREATE INDEX idx_support_w_source_date ON mariadb_historique_support_w(id_source, date);
CREATE INDEX idx_support_w_support ON mariadb_historique_support_w(id_support);
CREATE INDEX idx_affaires_personne ON mariadb_affaires(id_personne);
`

// Replica builds a replica file for a test. Rows are written through a
// private read-write connection; Store() hands the file to a database.Store.
type Replica struct {
	t    *testing.T
	Path string
	db   *sql.DB
}

// NewReplica creates an empty replica with the full schema in a temp directory
func NewReplica(t *testing.T) *Replica {
	t.Helper()
	return NewReplicaWithSchema(t, ReplicaSchema)
}

// NewReplicaWithSchema creates a replica file with a custom schema, for tests
// exercising incomplete or malformed replicas.
func NewReplicaWithSchema(t *testing.T, schema string) *Replica {
	t.Helper()

	path := filepath.Join(t.TempDir(), "Base.sqlite")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err, "Failed to create replica file")

	if schema != "" {
		_, err = db.Exec(schema)
		require.NoError(t, err, "Failed to apply replica schema")
	}

	r := &Replica{t: t, Path: path, db: db}
	t.Cleanup(func() {
		_ = r.db.Close()
	})
	return r
}

// Exec runs a raw statement against the replica file
func (r *Replica) Exec(query string, args ...any) {
	r.t.Helper()
	_, err := r.db.Exec(query, args...)
	require.NoError(r.t, err, "Failed to seed replica")
}

// Close flushes and releases the writer connection
func (r *Replica) Close() {
	r.t.Helper()
	require.NoError(r.t, r.db.Close())
}

// Store closes the writer and opens a database.Store on the file.
// The store is closed when the test ends.
func (r *Replica) Store() *database.Store {
	r.t.Helper()

	r.Close()

	store, err := database.New(database.Config{Path: r.Path, Name: "test"}, zerolog.Nop())
	require.NoError(r.t, err)
	r.t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

// F returns a pointer to v, for nullable columns
func F(v float64) *float64 {
	return &v
}

// S returns a pointer to s, for nullable text columns
func S(s string) *string {
	return &s
}
