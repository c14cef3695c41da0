/*
Package templatepro is a two-phase text template engine: a compiler turns
source text into a flat token vector with numerically resolved jumps, and
an interpreter executes that vector against a variable environment.

Directives live inside {{ }} delimiters in otherwise verbatim text:

	Hello, {{:name}}!
	{{for item in items}}
	  <li>{{:item.title | uppercase}}</li>
	{{endfor}}
	{{if !empty}}{{:count}} results{{else}}nothing{{endif}}

Values interpolate with {{:path}} and are HTML-escaped unless suffixed
with $ for raw output. A single filter with parameters may follow after
a pipe. Templates compose through {{include "file"}} and single
inheritance through {{extends "layout"}} with {{block "name"}} overrides.

Compile once, bind data, render:

	t, err := templatepro.Compile(`Hello, {{:name}}!`)
	if err != nil {
		// handle err
	}
	t.SetData("name", "World")
	out, err := t.Render()

A compiled vector is immutable and can be shared across goroutines via
Clone; environments, filters and format settings belong to a single
Template instance. SaveToFile and CreateFromFile persist the compiled
vector so templates can ship precompiled.
*/
package templatepro
