package judge

import (
	"fmt"
	"regexp"
	"strings"
)

// Signature is the user function's name and declared parameter list, found
// by structural pattern matching on conventional declaration forms. This is
// deliberately not a parser: only a handful of declaration shapes need to be
// recognized.
type Signature struct {
	Name   string
	Params []string
}

// extractor returns the first recognizable top-level function signature in
// the source, or nil when none is found.
type extractor func(source string) *Signature

var extractors = map[string]extractor{
	"javascript": extractJavaScript,
	"python":     extractPython,
}

var (
	jsFunctionRe = regexp.MustCompile(`(?m)^\s*function\s+([A-Za-z_$][\w$]*)\s*\(([^)]*)\)`)
	jsArrowRe    = regexp.MustCompile(`(?m)^\s*(?:const|let|var)\s+([A-Za-z_$][\w$]*)\s*=\s*(?:async\s+)?\(([^)]*)\)\s*=>`)
	pyDefRe      = regexp.MustCompile(`(?m)^def\s+([A-Za-z_]\w*)\s*\(([^)]*)\)\s*:`)
)

func extractJavaScript(source string) *Signature {
	if m := jsFunctionRe.FindStringSubmatch(source); m != nil {
		return &Signature{Name: m[1], Params: splitParams(m[2])}
	}
	if m := jsArrowRe.FindStringSubmatch(source); m != nil {
		return &Signature{Name: m[1], Params: splitParams(m[2])}
	}
	return nil
}

func extractPython(source string) *Signature {
	if m := pyDefRe.FindStringSubmatch(source); m != nil {
		return &Signature{Name: m[1], Params: splitParams(m[2])}
	}
	return nil
}

// splitParams cleans a declared parameter list: defaults and type hints are
// stripped, leaving bare names in declaration order.
func splitParams(list string) []string {
	var params []string
	for _, p := range splitTopLevel(list, ',') {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if eq := strings.IndexByte(p, '='); eq >= 0 {
			p = strings.TrimSpace(p[:eq])
		}
		if colon := strings.IndexByte(p, ':'); colon >= 0 {
			p = strings.TrimSpace(p[:colon])
		}
		params = append(params, p)
	}
	return params
}

// Driver is the synthesizer's output. When Synthesized is false the source
// is returned unmodified and the executor must route the raw test input
// through stdin; when true, arguments are bound inside the program and stdin
// must be suppressed entirely.
type Driver struct {
	Source      string
	Synthesized bool
}

// Synthesize wraps user source in a driver program that binds the parsed
// test-case arguments to the user function's parameters, invokes it, and
// prints a normalized representation of the result: booleans as lowercase
// true/false, strings raw, everything else compact JSON. Runtime exceptions
// go to stderr with a non-zero exit.
//
// If no recognizable function signature exists for the language, the source
// is returned untouched and the caller falls back to raw stdin.
func Synthesize(source, language, rawInput string) Driver {
	extract, ok := extractors[language]
	if !ok {
		return Driver{Source: source}
	}
	sig := extract(source)
	if sig == nil {
		return Driver{Source: source}
	}

	args := ParseTestInput(rawInput)
	values := make([]string, len(sig.Params))
	for i := range sig.Params {
		if i < len(args) {
			values[i] = args[i].Value
		} else {
			values[i] = "null"
		}
	}

	switch language {
	case "javascript":
		return Driver{Source: javascriptDriver(source, sig, values), Synthesized: true}
	case "python":
		return Driver{Source: pythonDriver(source, sig, values), Synthesized: true}
	}
	return Driver{Source: source}
}

func javascriptDriver(source string, sig *Signature, values []string) string {
	var b strings.Builder
	b.WriteString(source)
	b.WriteString("\n\ntry {\n")
	for i, p := range sig.Params {
		fmt.Fprintf(&b, "    const __arg%d = %s; // %s\n", i, values[i], p)
	}
	b.WriteString(fmt.Sprintf("    const __result = %s(%s);\n", sig.Name, argRefs(len(values))))
	b.WriteString(`    if (typeof __result === 'boolean') {
        console.log(__result ? 'true' : 'false');
    } else if (typeof __result === 'string') {
        console.log(__result);
    } else {
        console.log(JSON.stringify(__result));
    }
} catch (err) {
    console.error(err && err.stack ? err.stack : String(err));
    process.exit(1);
}
`)
	return b.String()
}

func pythonDriver(source string, sig *Signature, values []string) string {
	var b strings.Builder
	b.WriteString("import json\nimport sys\nimport traceback\n\n")
	b.WriteString(source)
	b.WriteString("\n\ntry:\n")
	for i := range sig.Params {
		// Values are JSON-shaped text; json.loads keeps null/true/false sane.
		fmt.Fprintf(&b, "    __arg%d = json.loads(%s)\n", i, pythonStringLiteral(values[i]))
	}
	fmt.Fprintf(&b, "    __result = %s(%s)\n", sig.Name, argRefs(len(values)))
	b.WriteString(`    if isinstance(__result, bool):
        print('true' if __result else 'false')
    elif isinstance(__result, str):
        print(__result)
    else:
        print(json.dumps(__result, separators=(',', ':')))
except Exception:
    traceback.print_exc(file=sys.stderr)
    sys.exit(1)
`)
	return b.String()
}

func argRefs(n int) string {
	refs := make([]string, n)
	for i := range refs {
		refs[i] = fmt.Sprintf("__arg%d", i)
	}
	return strings.Join(refs, ", ")
}

func pythonStringLiteral(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `'`, `\'`)
	s = strings.ReplaceAll(s, "\n", `\n`)
	return "'" + s + "'"
}
