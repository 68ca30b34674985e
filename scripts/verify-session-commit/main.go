// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Command verify-session-commit fails when session state is mutated or the
// vendor headers are spelled out anywhere but in their owning files.
package main

import (
	"fmt"
	"go/ast"
	"go/token"
	"go/types"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang.org/x/tools/go/packages"
)

const sessionPkgSuffix = "internal/session"

// mutators may only be called from the exchange commit point.
var mutators = map[string]bool{
	"RecordFirstRequestID": true,
	"UpdateAuthToken":      true,
	"Reset":                true,
}

var headerLiterals = []string{"CP_AUTH_TOKEN", "CP_REQ_ID"}

var (
	mutatorOwner = filepath.Join("internal", "laundry", "send.go")
	headerOwner  = filepath.Join("internal", "laundry", "const.go")
)

func main() {
	pattern := "./..."
	if len(os.Args) > 1 {
		pattern = os.Args[1]
	}

	violations, err := Analyze(pattern)
	if err != nil {
		fmt.Fprintf(os.Stderr, "analysis failed: %v\n", err)
		os.Exit(1)
	}

	if len(violations) > 0 {
		fmt.Fprintln(os.Stderr, "session commit violations found:")
		for _, v := range violations {
			fmt.Fprintln(os.Stderr, v)
		}
		os.Exit(1)
	}
}

// Analyze loads the packages matching pattern and reports every violation.
func Analyze(pattern string) ([]string, error) {
	cfg := &packages.Config{
		Mode: packages.NeedSyntax | packages.NeedFiles | packages.NeedTypes | packages.NeedTypesInfo | packages.NeedName,
		Dir:  ".",
	}
	pkgs, err := packages.Load(cfg, pattern)
	if err != nil {
		return nil, fmt.Errorf("load packages: %w", err)
	}

	var violations []string
	for _, pkg := range pkgs {
		if strings.HasSuffix(pkg.PkgPath, sessionPkgSuffix) {
			continue
		}
		for i, file := range pkg.Syntax {
			if i >= len(pkg.CompiledGoFiles) {
				continue
			}
			filename := pkg.CompiledGoFiles[i]
			if strings.HasSuffix(filename, "_test.go") {
				continue
			}
			violations = append(violations, inspect(pkg.Fset, filename, file, pkg.TypesInfo)...)
		}
	}
	return violations, nil
}

func inspect(fset *token.FileSet, filename string, file *ast.File, info *types.Info) []string {
	var out []string
	ownsMutators := strings.HasSuffix(filename, mutatorOwner)
	ownsHeaders := strings.HasSuffix(filename, headerOwner) || strings.Contains(filename, "laundrytest")

	ast.Inspect(file, func(n ast.Node) bool {
		switch node := n.(type) {
		case *ast.BasicLit:
			if node.Kind != token.STRING || ownsHeaders {
				return true
			}
			val, _ := strconv.Unquote(node.Value)
			for _, h := range headerLiterals {
				if strings.EqualFold(val, h) {
					out = append(out, formatViolation(fset, filename, node.Pos(),
						fmt.Sprintf("header literal %q (use the laundry header constants)", val)))
				}
			}
		case *ast.CallExpr:
			sel, ok := node.Fun.(*ast.SelectorExpr)
			if !ok || ownsMutators {
				return true
			}
			if name, ok := sessionMutator(sel, info); ok {
				out = append(out, formatViolation(fset, filename, node.Pos(),
					fmt.Sprintf("session.State.%s called outside the exchange commit point", name)))
			}
		}
		return true
	})
	return out
}

func formatViolation(fset *token.FileSet, filename string, pos token.Pos, msg string) string {
	if rel, err := filepath.Rel(".", filename); err == nil {
		filename = rel
	}
	return fmt.Sprintf("%s:%d: %s", filename, fset.Position(pos).Line, msg)
}

func sessionMutator(sel *ast.SelectorExpr, info *types.Info) (string, bool) {
	if info == nil {
		return "", false
	}
	fn, ok := info.ObjectOf(sel.Sel).(*types.Func)
	if !ok || !mutators[fn.Name()] {
		return "", false
	}
	sig, ok := fn.Type().(*types.Signature)
	if !ok || sig.Recv() == nil {
		return "", false
	}
	recv := sig.Recv().Type()
	if ptr, ok := recv.(*types.Pointer); ok {
		recv = ptr.Elem()
	}
	named, ok := recv.(*types.Named)
	if !ok || named.Obj().Pkg() == nil {
		return "", false
	}
	if named.Obj().Name() != "State" || !strings.HasSuffix(named.Obj().Pkg().Path(), sessionPkgSuffix) {
		return "", false
	}
	return fn.Name(), true
}
