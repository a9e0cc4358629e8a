// seed_meds genera un script SQL para poblar el catálogo de medicamentos a
// partir de un CSV de listado oficial (código;nombre;forma;concentracion;controlado).
// Los listados distribuidos por la autoridad sanitaria vienen en ISO-8859-1.
//
// Uso: go run ./cmd/seed_meds [ruta/medicamentos.csv]
// Por defecto busca medicamentos.csv en el directorio actual.
// Escribe: internal/infrastructure/postgres/migrations/002_seed_medications.sql
package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

func main() {
	csvPath := "medicamentos.csv"
	if len(os.Args) > 1 {
		csvPath = os.Args[1]
	}
	f, err := os.Open(csvPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Abrir CSV: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	// El listado oficial viene en ISO-8859-1 (tildes y eñes).
	reader := csv.NewReader(transform.NewReader(f, charmap.ISO8859_1.NewDecoder()))
	reader.Comma = ';'
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Leer CSV: %v\n", err)
		os.Exit(1)
	}

	type med struct {
		code, name, form, concentration string
		controlled                      bool
	}
	var meds []med
	for i, rec := range records {
		if i == 0 && strings.EqualFold(strings.TrimSpace(rec[0]), "codigo") {
			continue // fila de encabezado
		}
		if len(rec) < 3 {
			continue
		}
		m := med{
			code: strings.TrimSpace(rec[0]),
			name: strings.TrimSpace(rec[1]),
			form: strings.ToLower(strings.TrimSpace(rec[2])),
		}
		if m.code == "" || m.name == "" {
			continue
		}
		if len(rec) > 3 {
			m.concentration = strings.TrimSpace(rec[3])
		}
		if len(rec) > 4 {
			v := strings.ToLower(strings.TrimSpace(rec[4]))
			m.controlled = v == "1" || v == "si" || v == "sí" || v == "true"
		}
		meds = append(meds, m)
	}
	if len(meds) == 0 {
		fmt.Fprintln(os.Stderr, "El CSV no contiene medicamentos")
		os.Exit(1)
	}

	// Ruta del script de salida (relativa al módulo)
	moduleRoot := findModuleRoot()
	outPath := filepath.Join(moduleRoot, "internal", "infrastructure", "postgres", "migrations", "002_seed_medications.sql")
	out, err := os.Create(outPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Crear archivo: %v\n", err)
		os.Exit(1)
	}
	defer out.Close()

	out.WriteString("-- Catálogo de medicamentos\n")
	out.WriteString("-- Generado desde el listado oficial (CSV ISO-8859-1)\n\n")
	for _, m := range meds {
		concentration := "NULL"
		if m.concentration != "" {
			concentration = "'" + escapeSQL(m.concentration) + "'"
		}
		fmt.Fprintf(out,
			"INSERT INTO medications (id, code, name, form, concentration, is_controlled, requires_lot_tracking, warning_horizon_days, created_at, updated_at)\n"+
				"VALUES (gen_random_uuid(), '%s', '%s', '%s', %s, %t, true, 0, now(), now())\n"+
				"ON CONFLICT (code) DO UPDATE SET name = EXCLUDED.name, form = EXCLUDED.form, concentration = EXCLUDED.concentration, is_controlled = EXCLUDED.is_controlled, updated_at = now();\n",
			escapeSQL(m.code), escapeSQL(m.name), escapeSQL(m.form), concentration, m.controlled,
		)
	}

	fmt.Printf("Generado %s: %d medicamentos\n", outPath, len(meds))
}

func escapeSQL(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

func findModuleRoot() string {
	dir, _ := os.Getwd()
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return dir
		}
		dir = parent
	}
}
