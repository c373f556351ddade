package extract

import (
	"strings"
	"testing"
)

func TestNormalize_Empty(t *testing.T) {
	if got := Normalize("", ModeFull); got != "" {
		t.Errorf("empty input: got %q", got)
	}
	if got := Normalize("   \n\t", ModeHeadings); got != "" {
		t.Errorf("blank input: got %q", got)
	}
}

func TestNormalize_Headings(t *testing.T) {
	html := `<html><body>
		<h1>Boletim de Transportes</h1>
		<h2>Linha 901 - Alteração de horário</h2>
		<h3>ok</h3>
	</body></html>`
	got := Normalize(html, ModeHeadings)
	want := "Boletim de Transportes\nLinha 901 - Alteração de horário"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestNormalize_OrderIndependence(t *testing.T) {
	// WHAT: reordering the same fragment set yields identical output.
	// WHY: cosmetic re-renderings must not register as changes.
	a := `<body><h1>Primeiro título aqui</h1><h2>Segundo título aqui</h2></body>`
	b := `<body><h2>Segundo título aqui</h2><h1>Primeiro título aqui</h1></body>`
	if Normalize(a, ModeHeadings) != Normalize(b, ModeHeadings) {
		t.Fatal("normalization is sensitive to DOM order")
	}
}

func TestNormalize_Deterministic(t *testing.T) {
	html := `<body><h1>Título de exemplo</h1><p>` + strings.Repeat("conteúdo ", 10) + `</p></body>`
	if Normalize(html, ModeFull) != Normalize(html, ModeFull) {
		t.Fatal("normalization is not deterministic")
	}
}

func TestNormalize_StripsNoise(t *testing.T) {
	html := `<html><head><script>var x = "Heading inside script tag";</script>
		<style>.c { color: red }</style></head><body>
		<nav><h1>Navigation heading text</h1></nav>
		<header><h2>Header boilerplate text</h2></header>
		<footer><h2>Footer boilerplate text</h2></footer>
		<aside><h2>Decorative aside text</h2></aside>
		<noscript><h2>Noscript fallback text</h2></noscript>
		<h1>Conteúdo verdadeiro da página</h1>
	</body></html>`
	got := Normalize(html, ModeFull)
	if got != "Conteúdo verdadeiro da página" {
		t.Errorf("got %q", got)
	}
}

func TestNormalize_Dedup(t *testing.T) {
	html := `<body><h1>Título repetido aqui</h1><h2>Título repetido aqui</h2></body>`
	got := Normalize(html, ModeHeadings)
	if got != "Título repetido aqui" {
		t.Errorf("got %q", got)
	}
}

func TestNormalize_CollapsesWhitespace(t *testing.T) {
	html := "<body><h1>  Título \n\t com   espaços  </h1></body>"
	got := Normalize(html, ModeHeadings)
	if got != "Título com espaços" {
		t.Errorf("got %q", got)
	}
}

func TestNormalize_MinLengthFilter(t *testing.T) {
	// Headings under 10 chars are boilerplate labels, not content.
	html := `<body><h1>Menu</h1><h2>Um título suficientemente longo</h2></body>`
	got := Normalize(html, ModeHeadings)
	if got != "Um título suficientemente longo" {
		t.Errorf("got %q", got)
	}
}

func TestNormalize_MinLengthCountsRunes(t *testing.T) {
	// Nine runes of accented text span eighteen bytes; it is still a short
	// label and must be filtered.
	html := `<body><h1>ÁÉÍÓÚÂÊÔÃ</h1><h2>Um título suficientemente longo</h2></body>`
	got := Normalize(html, ModeHeadings)
	if got != "Um título suficientemente longo" {
		t.Errorf("got %q", got)
	}
}

func TestNormalize_FullMode(t *testing.T) {
	long := strings.Repeat("palavra ", 8) // ≥ 40 chars
	html := `<body>
		<h2>Título da seção aqui</h2>
		<table><tr><td>Linha 901</td><td>06:30</td></tr></table>
		<p>` + long + `</p>
		<p>curto</p>
		<ul><li>Item de lista longo</li><li>x</li></ul>
	</body>`
	got := Normalize(html, ModeFull)
	for _, want := range []string{
		"Título da seção aqui",
		"Linha 901 | 06:30",
		strings.TrimSpace(long),
		"Item de lista longo",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("missing fragment %q in %q", want, got)
		}
	}
	if strings.Contains(got, "curto") {
		t.Errorf("short paragraph kept: %q", got)
	}
	if strings.Contains(got, "\nx") || strings.HasSuffix(got, "x") {
		t.Errorf("short list item kept: %q", got)
	}
}

func TestNormalize_HeadingsModeIgnoresBody(t *testing.T) {
	html := `<body><h1>Só este título conta</h1><p>` +
		strings.Repeat("parágrafo ", 10) + `</p></body>`
	got := Normalize(html, ModeHeadings)
	if got != "Só este título conta" {
		t.Errorf("got %q", got)
	}
}

func TestNormalize_SortedOutput(t *testing.T) {
	html := `<body><h1>zzz título final</h1><h1>aaa título inicial</h1></body>`
	got := Normalize(html, ModeHeadings)
	want := "aaa título inicial\nzzz título final"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
