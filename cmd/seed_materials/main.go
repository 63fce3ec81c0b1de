// seed_materials genera un script SQL para cargar el catálogo de insumos de una finca
// a partir de un XML (exportado del sistema contable, suele venir en ISO-8859-1).
//
// Uso: go run ./cmd/seed_materials <farm-id> [ruta/catalogo.xml]
// Por defecto busca catalogo.xml en el directorio actual.
// Escribe: seed_materials_<farm-id>.sql en la raíz del módulo.
//
// Formato esperado:
//
//	<catalogo>
//	  <insumo codigo="UREA" nombre="Urea 46%" unidad="kg"/>
//	</catalogo>
package main

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// materialNamespace espacio UUID v5: el mismo (finca, código) produce siempre el mismo ID.
var materialNamespace = uuid.MustParse("6f1c7f4e-2b1a-4c55-9a53-0c6a4a1d2e10")

type catalogo struct {
	Insumos []insumo `xml:"insumo"`
}

type insumo struct {
	Codigo string `xml:"codigo,attr"`
	Nombre string `xml:"nombre,attr"`
	Unidad string `xml:"unidad,attr"`
}

type seedMaterial struct {
	id, code, name, unit string
}

func main() {
	if len(os.Args) < 2 || strings.TrimSpace(os.Args[1]) == "" {
		fmt.Fprintln(os.Stderr, "Uso: seed_materials <farm-id> [catalogo.xml]")
		os.Exit(2)
	}
	farmID := strings.TrimSpace(os.Args[1])
	xmlPath := "catalogo.xml"
	if len(os.Args) > 2 {
		xmlPath = os.Args[2]
	}
	f, err := os.Open(xmlPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Abrir XML: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	materials, err := parseCatalog(f, farmID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Decodificar XML: %v\n", err)
		os.Exit(1)
	}

	outPath := filepath.Join(findModuleRoot(), "seed_materials_"+farmID+".sql")
	out, err := os.Create(outPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Crear archivo: %v\n", err)
		os.Exit(1)
	}
	defer out.Close()

	if err := writeSQL(out, farmID, materials); err != nil {
		fmt.Fprintf(os.Stderr, "Escribir SQL: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Generado %s: %d insumos\n", outPath, len(materials))
}

// parseCatalog decodifica el XML; omite insumos sin código o nombre y deduplica por código
// (gana el último). Unidad por defecto "kg". Salida ordenada por código.
func parseCatalog(r io.Reader, farmID string) ([]seedMaterial, error) {
	var c catalogo
	dec := xml.NewDecoder(r)
	dec.CharsetReader = func(charset string, input io.Reader) (io.Reader, error) {
		if strings.EqualFold(charset, "ISO-8859-1") || strings.EqualFold(charset, "ISO8859-1") {
			return transform.NewReader(input, charmap.ISO8859_1.NewDecoder()), nil
		}
		return input, nil
	}
	if err := dec.Decode(&c); err != nil {
		return nil, err
	}

	byCode := make(map[string]seedMaterial)
	for _, in := range c.Insumos {
		code := strings.ToUpper(strings.TrimSpace(in.Codigo))
		name := strings.TrimSpace(in.Nombre)
		if code == "" || name == "" {
			continue
		}
		unit := strings.TrimSpace(in.Unidad)
		if unit == "" {
			unit = "kg"
		}
		byCode[code] = seedMaterial{
			id:   uuid.NewSHA1(materialNamespace, []byte(farmID+":"+code)).String(),
			code: code,
			name: name,
			unit: unit,
		}
	}

	codes := make([]string, 0, len(byCode))
	for code := range byCode {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	result := make([]seedMaterial, 0, len(codes))
	for _, code := range codes {
		result = append(result, byCode[code])
	}
	return result, nil
}

func writeSQL(w io.Writer, farmID string, materials []seedMaterial) error {
	var b strings.Builder
	b.WriteString("-- Catálogo de insumos de la finca " + farmID + "\n")
	b.WriteString("-- Generado con cmd/seed_materials\n\n")
	if len(materials) == 0 {
		b.WriteString("-- (sin insumos)\n")
		_, err := io.WriteString(w, b.String())
		return err
	}
	b.WriteString("INSERT INTO materials (id, farm_id, code, name, unit) VALUES\n")
	for i, m := range materials {
		fmt.Fprintf(&b, "  ('%s', '%s', '%s', '%s', '%s')",
			m.id, escapeSQL(farmID), escapeSQL(m.code), escapeSQL(m.name), escapeSQL(m.unit))
		if i < len(materials)-1 {
			b.WriteString(",\n")
		} else {
			b.WriteString("\n")
		}
	}
	b.WriteString("ON CONFLICT (farm_id, code) DO UPDATE SET name = EXCLUDED.name, unit = EXCLUDED.unit, updated_at = now();\n")
	_, err := io.WriteString(w, b.String())
	return err
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
