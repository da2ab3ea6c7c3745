package snapshot

import "strings"

// IdentityMap tracks the correspondence between identifiers in a snapshot and
// the identifiers assigned by the destination database during one restore
// call. Teachers are re-linked by institutional email (the natural key that
// survives across database instances); formularios have no portable key and
// are re-linked by the numeric id they carried in the snapshot. The map never
// outlives a single restore.
type IdentityMap struct {
	maestroByEmail map[string]uint
	maestroByOldID map[uint]uint
	formularios    map[uint]uint
}

// NewIdentityMap returns an empty identity map for one restore pass.
func NewIdentityMap() *IdentityMap {
	return &IdentityMap{
		maestroByEmail: make(map[string]uint),
		maestroByOldID: make(map[uint]uint),
		formularios:    make(map[uint]uint),
	}
}

// RecordMaestro stores the mapping for one inserted teacher. A repeated email
// overwrites the previous mapping: the document is processed in order, so the
// last occurrence wins, matching the one-active-record-per-email invariant.
func (m *IdentityMap) RecordMaestro(email string, oldID, newID uint) {
	m.maestroByEmail[normalizeEmail(email)] = newID
	m.maestroByOldID[oldID] = newID
}

// RecordFormulario stores the mapping for one inserted submission.
func (m *IdentityMap) RecordFormulario(oldID, newID uint) {
	m.formularios[oldID] = newID
}

// ResolveMaestroByEmail returns the destination id for a teacher email.
func (m *IdentityMap) ResolveMaestroByEmail(email string) (uint, bool) {
	id, ok := m.maestroByEmail[normalizeEmail(email)]
	return id, ok
}

// ResolveMaestro returns the destination id for a teacher's snapshot id.
func (m *IdentityMap) ResolveMaestro(oldID uint) (uint, bool) {
	id, ok := m.maestroByOldID[oldID]
	return id, ok
}

// ResolveFormulario returns the destination id for a submission's snapshot id.
func (m *IdentityMap) ResolveFormulario(oldID uint) (uint, bool) {
	id, ok := m.formularios[oldID]
	return id, ok
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
