package testing

import (
	"testing"

	"github.com/masterc/wealthdesk/internal/database"
)

// Snapshot is one weekly row of a client or contract history
type Snapshot struct {
	ID         int64
	Date       string
	Valuation  *float64
	Movement   *float64
	Index      *float64
	WeeklyPerf *float64
	Perf52     *float64
	Volatility *float64
	Year       *int
}

// Instrument is one row of the instrument table
type Instrument struct {
	ID        int64
	ISIN      string
	Name      *string
	General   *string
	Principal *string
	Detailed  *string
	Geography *string
	Promoter  *string
	RetroRate *float64
	Risk      *int
}

// Position is one weekly row of a contract's holding in an instrument
type Position struct {
	ContractID   int64
	InstrumentID string
	Date         string
	Units        *float64
	UnitValue    *float64
	CostBasis    *float64
	Valuation    *float64
}

// AddClient inserts a client
func (r *Replica) AddClient(id int64, lastName, firstName string, risk int) {
	r.t.Helper()
	r.Exec(`INSERT INTO mariadb_clients (id, nom, prenom, SRRI) VALUES (?, ?, ?, ?)`, id, lastName, firstName, risk)
}

// AddContract inserts a contract; an empty closedOn stores NULL
func (r *Replica) AddContract(id, clientID int64, ref, openedOn, closedOn string, risk int) {
	r.t.Helper()
	var closed any
	if closedOn != "" {
		closed = closedOn
	}
	r.Exec(`INSERT INTO mariadb_affaires (id, id_personne, ref, date_debut, date_cle, SRRI) VALUES (?, ?, ?, ?, ?, ?)`,
		id, clientID, ref, openedOn, closed, risk)
}

// AddClientSnapshot inserts a client history row
func (r *Replica) AddClientSnapshot(s Snapshot) {
	r.t.Helper()
	r.Exec(`INSERT INTO mariadb_historique_personne_w
		(id, date, valo, mouvement, sicav, perf_sicav_hebdo, perf_sicav_52, volat, "Année")
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.Date, s.Valuation, s.Movement, s.Index, s.WeeklyPerf, s.Perf52, s.Volatility, s.Year)
}

// AddContractSnapshot inserts a contract history row
func (r *Replica) AddContractSnapshot(s Snapshot) {
	r.t.Helper()
	r.Exec(`INSERT INTO mariadb_historique_affaire_w
		(id, date, valo, mouvement, sicav, perf_sicav_hebdo, perf_sicav_52, volat, "Année")
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.Date, s.Valuation, s.Movement, s.Index, s.WeeklyPerf, s.Perf52, s.Volatility, s.Year)
}

// AddInstrument inserts an instrument
func (r *Replica) AddInstrument(i Instrument) {
	r.t.Helper()
	r.Exec(`INSERT INTO mariadb_support
		(id, code_isin, nom, cat_gene, cat_principale, cat_det, cat_geo, promoteur, "Taux rétro", SRRI)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		i.ID, i.ISIN, i.Name, i.General, i.Principal, i.Detailed, i.Geography, i.Promoter, i.RetroRate, i.Risk)
}

// AddPosition inserts an instrument position row
func (r *Replica) AddPosition(p Position) {
	r.t.Helper()
	r.Exec(`INSERT INTO mariadb_historique_support_w
		(source, id_source, date, id_support, nbuc, vl, prmp, valo)
		VALUES ('affaire', ?, ?, ?, ?, ?, ?, ?)`,
		p.ContractID, p.Date, p.InstrumentID, p.Units, p.UnitValue, p.CostBasis, p.Valuation)
}

// AddESG inserts ESG letters for an instrument code; empty letters store NULL
func (r *Replica) AddESG(isin, e, s, g string) {
	r.t.Helper()
	r.Exec(`INSERT INTO donnees_esg_etendu (Isin, noteE, noteS, noteG) VALUES (?, ?, ?, ?)`,
		isin, nullIfEmpty(e), nullIfEmpty(s), nullIfEmpty(g))
}

// AddBenchmarkPoint inserts one point of a named benchmark series
func (r *Replica) AddBenchmarkPoint(name, date string, value float64) {
	r.t.Helper()
	r.Exec(`INSERT INTO allocations (nom, date, sicav) VALUES (?, ?, ?)`, name, date, value)
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func intPtr(v int) *int {
	return &v
}

// SeedBook fills the replica with a small book used across module tests.
//
// Clients: 1 (initial SRRI 3, current 4), 2 (initial 5, current 5), 3 (initial 4,
// no volatility). Client 1 holds contracts 10 (open) and 11 (closed), client 2
// contract 20, client 3 contract 30. Positions exist on 2023-06-30 (contract 10
// only) and 2023-12-29 (all contracts). Benchmarks "Prudent" and "Dynamique".
func SeedBook(r *Replica) {
	r.t.Helper()

	r.AddClient(1, "Dupont", "Jean", 3)
	r.AddClient(2, "Martin", "Claire", 5)
	r.AddClient(3, "Bernard", "Luc", 4)

	r.AddContract(10, 1, "AV-10", "2021-03-01", "", 3)
	r.AddContract(11, 1, "PER-11", "2022-01-10", "2023-12-31", 4)
	r.AddContract(20, 2, "AV-20", "2022-02-01", "", 5)
	r.AddContract(30, 3, "AV-30", "2023-01-02", "", 4)

	// Client 1
	r.AddClientSnapshot(Snapshot{ID: 1, Date: "2022-06-24", Valuation: F(100000), Movement: F(100000), Index: F(100), Year: intPtr(2022)})
	r.AddClientSnapshot(Snapshot{ID: 1, Date: "2022-12-30", Valuation: F(104000), Movement: F(0), Index: F(104), Perf52: F(0.04), Volatility: F(0.03), Year: intPtr(2022)})
	r.AddClientSnapshot(Snapshot{ID: 1, Date: "2023-06-30", Valuation: F(150000), Movement: F(50000), Index: F(99), Perf52: F(-0.01), Volatility: F(0.04), Year: intPtr(2023)})
	r.AddClientSnapshot(Snapshot{ID: 1, Date: "2023-12-29 00:00:00", Valuation: F(140000), Movement: F(-20000), Index: F(105), Perf52: F(0.05), Volatility: F(0.06)})
	// Client 2
	r.AddClientSnapshot(Snapshot{ID: 2, Date: "2023-06-30", Valuation: F(300000), Movement: F(300000), Index: F(100), Volatility: F(0.12), Year: intPtr(2023)})
	r.AddClientSnapshot(Snapshot{ID: 2, Date: "2023-12-29", Valuation: F(310000), Movement: F(0), Index: F(103), Perf52: F(0.03), Volatility: F(0.12), Year: intPtr(2023)})
	// Client 3
	r.AddClientSnapshot(Snapshot{ID: 3, Date: "2023-12-29", Valuation: F(50000), Movement: F(50000), Index: F(100), Year: intPtr(2023)})

	r.AddContractSnapshot(Snapshot{ID: 10, Date: "2023-06-30", Valuation: F(100000), Movement: F(0), Volatility: F(0.02), Year: intPtr(2023)})
	r.AddContractSnapshot(Snapshot{ID: 10, Date: "2023-12-29", Valuation: F(90000), Movement: F(-20000), Volatility: F(0.07), Year: intPtr(2023)})
	r.AddContractSnapshot(Snapshot{ID: 11, Date: "2023-06-30", Valuation: F(50000), Movement: F(50000), Volatility: F(0.01), Year: intPtr(2023)})
	r.AddContractSnapshot(Snapshot{ID: 11, Date: "2023-12-29", Valuation: F(50000), Movement: F(0), Volatility: F(0.01), Year: intPtr(2023)})
	r.AddContractSnapshot(Snapshot{ID: 20, Date: "2023-06-30", Valuation: F(300000), Movement: F(300000), Volatility: F(0.12), Year: intPtr(2023)})
	r.AddContractSnapshot(Snapshot{ID: 20, Date: "2023-12-29", Valuation: F(310000), Movement: F(0), Volatility: F(0.12), Year: intPtr(2023)})
	r.AddContractSnapshot(Snapshot{ID: 30, Date: "2023-12-29", Valuation: F(50000), Movement: F(50000), Year: intPtr(2023)})

	r.AddInstrument(Instrument{ID: 100, ISIN: "FR0000000001", Name: S("Fonds Euro"), General: S("Fonds euros"),
		Principal: S("Monétaire"), Detailed: S("Euro"), Geography: S("Europe"), Promoter: S("Alpha AM"),
		RetroRate: F(0.005), Risk: intPtr(1)})
	r.AddInstrument(Instrument{ID: 101, ISIN: "LU0000000002", Name: S("Actions Monde"), General: S("UC"),
		Principal: S("Actions"), Detailed: S("Monde"), Geography: S("Monde"), Promoter: S("Beta Gestion"),
		RetroRate: F(0.01), Risk: intPtr(5)})
	r.AddInstrument(Instrument{ID: 102, ISIN: "FR0000000003", Name: S("Oblig Europe"), General: S("UC"),
		Principal: S("Obligations"), Detailed: S("Crédit"), Promoter: S("Alpha AM"),
		RetroRate: F(0.008), Risk: intPtr(3)})

	r.AddPosition(Position{ContractID: 10, InstrumentID: "100", Date: "2023-06-30", Units: F(200), UnitValue: F(500), CostBasis: F(480), Valuation: F(100000)})
	r.AddPosition(Position{ContractID: 10, InstrumentID: "100", Date: "2023-12-29", Units: F(100), UnitValue: F(500), CostBasis: F(480), Valuation: F(50000)})
	r.AddPosition(Position{ContractID: 10, InstrumentID: "101", Date: "2023-12-29", Units: F(200), UnitValue: F(200), CostBasis: F(150), Valuation: F(40000)})
	r.AddPosition(Position{ContractID: 11, InstrumentID: "101", Date: "2023-12-29", Units: F(100), UnitValue: F(200), CostBasis: F(250), Valuation: F(20000)})
	r.AddPosition(Position{ContractID: 11, InstrumentID: "102", Date: "2023-12-29", Units: F(300), UnitValue: F(100), Valuation: F(30000)})
	r.AddPosition(Position{ContractID: 20, InstrumentID: "101", Date: "2023-12-29", Units: F(1550), UnitValue: F(200), CostBasis: F(180), Valuation: F(310000)})
	r.AddPosition(Position{ContractID: 30, InstrumentID: "102", Date: "2023-12-29", Units: F(500), UnitValue: F(100), CostBasis: F(95), Valuation: F(50000)})

	r.AddESG("FR0000000001", "C", "B", "A")
	r.AddESG("LU0000000002", "E", "D", "C")

	r.AddBenchmarkPoint("Prudent", "2022-12-30", 50)
	r.AddBenchmarkPoint("Prudent", "2023-06-30", 52)
	r.AddBenchmarkPoint("Prudent", "2023-12-29", 55)
	r.AddBenchmarkPoint("Dynamique", "2023-06-30 00:00:00", 100)
	r.AddBenchmarkPoint("Dynamique", "2023-12-29", 110)
	r.AddBenchmarkPoint("", "2023-12-29", 1)
}

// NewBookStore seeds a fresh replica with SeedBook and opens a store on it
func NewBookStore(t *testing.T) *database.Store {
	t.Helper()
	r := NewReplica(t)
	SeedBook(r)
	return r.Store()
}
