package analysis

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/repolens/internal/core/domain"
)

// Ensure RustParser implements the interface.
var _ Parser = (*RustParser)(nil)

// RustParser is a line-oriented lexical parser for Rust sources. It
// tracks brace depth to delimit declaration spans and nesting (modules,
// impl blocks) without building a syntax tree.
type RustParser struct{}

// NewRustParser creates a Rust parser.
func NewRustParser() *RustParser {
	return &RustParser{}
}

var (
	rustDerive = regexp.MustCompile(`^#\[derive\(([^)]*)\)\]`)
	rustType   = regexp.MustCompile(`^(?:(pub(?:\([^)]*\))?)\s+)?(struct|enum|trait)\s+([A-Za-z_]\w*)`)
	rustAlias  = regexp.MustCompile(`^(?:(pub(?:\([^)]*\))?)\s+)?type\s+([A-Za-z_]\w*)`)
	rustConst  = regexp.MustCompile(`^(?:(pub(?:\([^)]*\))?)\s+)?(?:const|static)\s+([A-Za-z_]\w*)\s*:`)
	rustFn     = regexp.MustCompile(`^(?:(pub(?:\([^)]*\))?)\s+)?(?:async\s+)?(?:unsafe\s+)?(?:extern\s+"[^"]*"\s+)?fn\s+([A-Za-z_]\w*)`)
	rustMod    = regexp.MustCompile(`^(?:(pub(?:\([^)]*\))?)\s+)?mod\s+([A-Za-z_]\w*)\s*([;{])`)
	rustImpl   = regexp.MustCompile(`^impl(?:<[^>]*>)?\s+(?:([A-Za-z_][\w:]*(?:<[^>]*>)?)\s+for\s+)?([A-Za-z_][\w:]*)`)

	rustFeature = regexp.MustCompile(`^#\[cfg\(feature\s*=\s*"([^"]+)"\)\]`)

	// Type positions: struct fields and fn parameters, return types,
	// path segments. Generic arguments are scanned separately.
	rustRefPatterns = []*regexp.Regexp{
		regexp.MustCompile(`:\s*&?\s*(?:mut\s+)?(?:dyn\s+|impl\s+)?([A-Z]\w*)`),
		regexp.MustCompile(`->\s*&?\s*(?:mut\s+)?(?:dyn\s+|impl\s+)?([A-Z]\w*)`),
		regexp.MustCompile(`::\s*([A-Z]\w*)`),
		regexp.MustCompile(`=\s*&?\s*([A-Z]\w*)`),
	}
	rustGenericArgs = regexp.MustCompile(`<([^<>]+)>`)
	rustUpperName   = regexp.MustCompile(`\b[A-Z]\w*\b`)
)

// rustPrelude are container and prelude names too common to be useful
// as references.
var rustPrelude = map[string]struct{}{
	"Self": {}, "String": {}, "Option": {}, "Result": {}, "Vec": {},
	"Box": {}, "Some": {}, "None": {}, "Ok": {}, "Err": {},
}

// Parse extracts the declarations of one Rust file.
func (p *RustParser) Parse(file domain.SourceFile) (*FileResult, error) {
	if !utf8.Valid(file.Content) {
		return nil, fmt.Errorf("content of %s is not valid UTF-8", file.Path)
	}
	f := &rustFile{
		path:  file.Path,
		lines: strings.Split(string(file.Content), "\n"),
		seen:  make(map[string]*domain.Item),
	}
	f.parseRange(0, len(f.lines), nil, nil, "", "")
	return &f.result, nil
}

type rustFile struct {
	path   string
	lines  []string
	seen   map[string]*domain.Item
	result FileResult
}

// addItem registers an item unless its identity already exists in this
// file, as with cfg-gated redeclarations. The first occurrence wins;
// the returned item is the registered one.
func (f *rustFile) addItem(item *domain.Item, parent *domain.Item) *domain.Item {
	key := string(item.Kind) + "\x00" + item.QualifiedName
	if existing, dup := f.seen[key]; dup {
		return existing
	}
	f.seen[key] = item
	f.result.Items = append(f.result.Items, item)
	if parent != nil {
		f.result.Containment = append(f.result.Containment, Containment{Module: parent, Child: item})
	}
	return item
}

func (f *rustFile) taken(kind domain.ItemKind, qualified string) bool {
	_, ok := f.seen[string(kind)+"\x00"+qualified]
	return ok
}

// parseRange walks the half-open line range [start, end). modPath is
// the enclosing module path, parent the enclosing module item, receiver
// the enclosing impl block's type (functions then become methods) and
// implTrait the impl head's trait as written, generics included.
func (f *rustFile) parseRange(start, end int, modPath []string, parent *domain.Item, receiver, implTrait string) {
	var pendingDerives []string

	i := start
	for i < end {
		trimmed := strings.TrimSpace(stripLineComment(f.lines[i]))
		if trimmed == "" {
			i++
			continue
		}

		if m := rustDerive.FindStringSubmatch(trimmed); m != nil {
			for _, t := range strings.Split(m[1], ",") {
				if t = strings.TrimSpace(t); t != "" {
					pendingDerives = append(pendingDerives, t)
				}
			}
			i++
			continue
		}
		if m := rustFeature.FindStringSubmatch(trimmed); m != nil {
			f.result.Features = append(f.result.Features, m[1])
			i++
			continue
		}
		// Other attributes sit between a derive and its type.
		if strings.HasPrefix(trimmed, "#[") || strings.HasPrefix(trimmed, "#!") {
			i++
			continue
		}

		if m := rustMod.FindStringSubmatch(trimmed); m != nil {
			name := m[2]
			item := &domain.Item{
				Kind:          domain.KindModule,
				Name:          name,
				QualifiedName: qualify(modPath, name),
				File:          f.path,
				StartLine:     i + 1,
				EndLine:       i + 1,
				Visibility:    rustVisibility(m[1]),
				Signature:     f.signature(i),
			}
			if m[3] == ";" {
				f.addItem(item, parent)
				pendingDerives = nil
				i++
				continue
			}
			last := f.declEnd(i)
			item.EndLine = last + 1
			item = f.addItem(item, parent)
			f.parseRange(i+1, last, append(modPath, name), item, "", "")
			pendingDerives = nil
			i = last + 1
			continue
		}

		if receiver == "" && strings.HasPrefix(trimmed, "impl") {
			if m := rustImpl.FindStringSubmatch(trimmed); m != nil {
				typeName := lastSegment(m[2])
				if m[1] != "" {
					f.result.Impls = append(f.result.Impls, ImplRecord{
						File:      f.path,
						TypeName:  typeName,
						TraitName: lastSegment(stripGenerics(m[1])),
					})
				}
				last := f.declEnd(i)
				f.parseRange(i+1, last, modPath, parent, typeName, m[1])
				pendingDerives = nil
				i = last + 1
				continue
			}
		}

		if m := rustType.FindStringSubmatch(trimmed); m != nil {
			var kind domain.ItemKind
			switch m[2] {
			case "struct":
				kind = domain.KindStruct
			case "enum":
				kind = domain.KindEnum
			case "trait":
				kind = domain.KindTrait
			}
			name := m[3]
			last := f.declEnd(i)
			f.addItem(&domain.Item{
				Kind:          kind,
				Name:          name,
				QualifiedName: qualify(modPath, name),
				File:          f.path,
				StartLine:     i + 1,
				EndLine:       last + 1,
				Visibility:    rustVisibility(m[1]),
				Signature:     f.signature(i),
				References:    f.collectRefs(i, last, name),
			}, parent)
			if kind != domain.KindTrait {
				for _, trait := range pendingDerives {
					f.result.Impls = append(f.result.Impls, ImplRecord{
						File:      f.path,
						TypeName:  name,
						TraitName: trait,
					})
				}
			}
			pendingDerives = nil
			i = last + 1
			continue
		}

		if m := rustAlias.FindStringSubmatch(trimmed); m != nil {
			name := m[2]
			last := f.declEnd(i)
			f.addItem(&domain.Item{
				Kind:          domain.KindTypeAlias,
				Name:          name,
				QualifiedName: qualify(modPath, name),
				File:          f.path,
				StartLine:     i + 1,
				EndLine:       last + 1,
				Visibility:    rustVisibility(m[1]),
				Signature:     f.signature(i),
				References:    f.collectRefs(i, last, name),
			}, parent)
			pendingDerives = nil
			i = last + 1
			continue
		}

		if m := rustConst.FindStringSubmatch(trimmed); m != nil {
			name := m[2]
			last := f.declEnd(i)
			f.addItem(&domain.Item{
				Kind:          domain.KindConst,
				Name:          name,
				QualifiedName: qualify(modPath, name),
				File:          f.path,
				StartLine:     i + 1,
				EndLine:       last + 1,
				Visibility:    rustVisibility(m[1]),
				Signature:     f.signature(i),
				References:    f.collectRefs(i, last, name),
			}, parent)
			pendingDerives = nil
			i = last + 1
			continue
		}

		if m := rustFn.FindStringSubmatch(trimmed); m != nil {
			name := m[2]
			kind := domain.KindFunction
			qualified := qualify(modPath, name)
			if receiver != "" {
				kind = domain.KindMethod
				qualified = qualify(modPath, receiver+"::"+name)
				// Separate trait impls may give one type the same
				// method name; the impl head keeps the identities
				// distinct.
				if implTrait != "" && f.taken(kind, qualified) {
					qualified = qualify(modPath, receiver+"::<"+implTrait+">::"+name)
				}
			}
			last := f.declEnd(i)
			f.addItem(&domain.Item{
				Kind:          kind,
				Name:          name,
				QualifiedName: qualified,
				File:          f.path,
				StartLine:     i + 1,
				EndLine:       last + 1,
				Visibility:    rustVisibility(m[1]),
				Signature:     f.signature(i),
				References:    f.collectRefs(i, last, name),
			}, parent)
			pendingDerives = nil
			i = last + 1
			continue
		}

		pendingDerives = nil
		i++
	}
}

// declEnd returns the index of the line ending the declaration that
// starts at line start: the matching closing brace for block forms, the
// terminating semicolon otherwise. Braces inside string literals are
// not tracked; the scanner is lexical by design.
func (f *rustFile) declEnd(start int) int {
	depth := 0
	opened := false
	for i := start; i < len(f.lines); i++ {
		for _, ch := range stripLineComment(f.lines[i]) {
			switch ch {
			case '{':
				depth++
				opened = true
			case '}':
				depth--
				if opened && depth <= 0 {
					return i
				}
			case ';':
				if !opened && depth == 0 {
					return i
				}
			}
		}
	}
	return len(f.lines) - 1
}

// signature returns the declaration head starting at line start, up to
// the opening brace or terminating semicolon, joined on single spaces.
func (f *rustFile) signature(start int) string {
	var parts []string
	for i := start; i < len(f.lines); i++ {
		line := stripLineComment(f.lines[i])
		if idx := strings.IndexAny(line, "{;"); idx >= 0 {
			if head := strings.TrimSpace(line[:idx]); head != "" {
				parts = append(parts, head)
			}
			break
		}
		if head := strings.TrimSpace(line); head != "" {
			parts = append(parts, head)
		}
	}
	return strings.Join(parts, " ")
}

// collectRefs gathers type names appearing in type positions within the
// line span [start, end], excluding prelude names and the item's own
// name. Sorted and duplicate-free.
func (f *rustFile) collectRefs(start, end int, selfName string) []string {
	seen := make(map[string]struct{})
	for i := start; i <= end && i < len(f.lines); i++ {
		line := stripLineComment(f.lines[i])
		for _, re := range rustRefPatterns {
			for _, m := range re.FindAllStringSubmatch(line, -1) {
				seen[m[1]] = struct{}{}
			}
		}
		for _, m := range rustGenericArgs.FindAllStringSubmatch(line, -1) {
			for _, name := range rustUpperName.FindAllString(m[1], -1) {
				seen[name] = struct{}{}
			}
		}
	}

	delete(seen, selfName)
	for name := range rustPrelude {
		delete(seen, name)
	}
	if len(seen) == 0 {
		return nil
	}
	refs := make([]string, 0, len(seen))
	for name := range seen {
		refs = append(refs, name)
	}
	sort.Strings(refs)
	return refs
}

func stripLineComment(line string) string {
	if idx := strings.Index(line, "//"); idx >= 0 {
		return line[:idx]
	}
	return line
}

func qualify(modPath []string, name string) string {
	if len(modPath) == 0 {
		return name
	}
	return strings.Join(modPath, "::") + "::" + name
}

func lastSegment(path string) string {
	if idx := strings.LastIndex(path, "::"); idx >= 0 {
		return path[idx+2:]
	}
	return path
}

func stripGenerics(name string) string {
	if idx := strings.Index(name, "<"); idx >= 0 {
		return name[:idx]
	}
	return name
}

func rustVisibility(pub string) domain.Visibility {
	switch {
	case pub == "":
		return domain.VisibilityPrivate
	case pub == "pub":
		return domain.VisibilityPublic
	default:
		return domain.VisibilityCrate
	}
}
