package snapshot

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

var (
	// ErrUnsupportedVersion reports a snapshot whose version tag this build
	// does not recognize. Restore never starts.
	ErrUnsupportedVersion = errors.New("unsupported snapshot version")
	// ErrIntegrityViolation reports a reference inside the document that does
	// not resolve within the document itself. Restore never starts.
	ErrIntegrityViolation = errors.New("snapshot integrity violation")
	// ErrMalformedDocument reports a payload that is not valid JSON or does
	// not match the expected top-level shape.
	ErrMalformedDocument = errors.New("malformed snapshot document")
)

//go:embed document_schema.json
var documentSchemaJSON string

var documentSchema = mustCompileDocumentSchema()

func mustCompileDocumentSchema() *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("document_schema.json", strings.NewReader(documentSchemaJSON)); err != nil {
		panic(err)
	}
	return compiler.MustCompile("document_schema.json")
}

// ValidationResult is the outcome of validating a snapshot document. Cause is
// nil when OK, otherwise one of ErrUnsupportedVersion, ErrIntegrityViolation
// or ErrMalformedDocument (the first failure class encountered, in that
// severity order).
type ValidationResult struct {
	OK     bool
	Errors []string
	Cause  error
}

// Decode parses raw snapshot bytes, checking the top-level shape against the
// embedded JSON Schema before unmarshalling into the typed document.
func Decode(raw []byte) (*Document, error) {
	var payload interface{}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	if err := documentSchema.Validate(payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}

	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	return &doc, nil
}

// Validate checks a decoded document for a recognized version tag and for
// closed-world referential integrity: every activity must point at a
// formulario present in the document and every notification at a maestro
// present in the document. Pure; never touches a database.
func Validate(doc *Document) ValidationResult {
	result := ValidationResult{OK: true}
	if doc == nil {
		return ValidationResult{Cause: ErrMalformedDocument, Errors: []string{"document is empty"}}
	}

	if !IsVersionSupported(doc.Version) {
		result.OK = false
		result.Cause = ErrUnsupportedVersion
		result.Errors = append(result.Errors, fmt.Sprintf("version %q is not supported (supported: %s)", doc.Version, strings.Join(SupportedVersions, ", ")))
		return result
	}

	formularioIDs := make(map[uint]struct{}, len(doc.Formularios))
	for _, form := range doc.Formularios {
		formularioIDs[form.ID] = struct{}{}
	}
	maestroIDs := make(map[uint]struct{}, len(doc.Maestros))
	for _, maestro := range doc.Maestros {
		maestroIDs[maestro.ID] = struct{}{}
	}

	for _, form := range doc.Formularios {
		for _, err := range danglingActivityRefs(form, formularioIDs) {
			result.Errors = append(result.Errors, err)
		}
	}

	for i, notif := range doc.Notificaciones {
		if _, ok := maestroIDs[notif.MaestroID]; !ok {
			result.Errors = append(result.Errors, fmt.Sprintf("notificaciones[%d]: maestro_id %d not present in maestros_autorizados", i, notif.MaestroID))
		}
	}

	if len(result.Errors) > 0 {
		result.OK = false
		result.Cause = ErrIntegrityViolation
	}
	return result
}

func danglingActivityRefs(form FormularioEntry, formularioIDs map[uint]struct{}) []string {
	var errs []string
	check := func(category string, index int, ref uint) {
		if _, ok := formularioIDs[ref]; !ok {
			errs = append(errs, fmt.Sprintf("formulario %d: %s[%d] references formulario_id %d not present in formularios", form.ID, category, index, ref))
		}
	}

	for i, curso := range form.Cursos {
		check("cursos", i, curso.FormularioID)
	}
	for i, pub := range form.Publicaciones {
		check("publicaciones", i, pub.FormularioID)
	}
	for i, evento := range form.Eventos {
		check("eventos", i, evento.FormularioID)
	}
	for i, diseno := range form.Disenos {
		check("disenos", i, diseno.FormularioID)
	}
	for i, mov := range form.Movilidades {
		check("movilidades", i, mov.FormularioID)
	}
	for i, rec := range form.Reconocimientos {
		check("reconocimientos", i, rec.FormularioID)
	}
	for i, cert := range form.Certificaciones {
		check("certificaciones", i, cert.FormularioID)
	}
	for i, otra := range form.OtrasActividades {
		check("otras_actividades", i, otra.FormularioID)
	}
	return errs
}
