package templatepro_test

import (
	"fmt"

	templatepro "github.com/soitun/templatepro"
)

func ExampleCompile() {
	tpl, err := templatepro.Compile(`Hello, {{:name}}!`)
	if err != nil {
		panic(err)
	}
	tpl.SetData("name", "World")
	out, err := tpl.Render()
	if err != nil {
		panic(err)
	}
	fmt.Println(out)
	// Output: Hello, World!
}

func ExampleTemplate_AddFilter() {
	tpl, err := templatepro.Compile(`{{:word | reverse}}`)
	if err != nil {
		panic(err)
	}
	tpl.AddFilter("reverse", func(v templatepro.Value, _ []templatepro.Value, fs *templatepro.FormatSettings) (templatepro.Value, error) {
		s := []rune(fs.FormatValue(v))
		for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
			s[i], s[j] = s[j], s[i]
		}
		return templatepro.StringValue(string(s)), nil
	})
	tpl.SetData("word", "stressed")
	out, err := tpl.Render()
	if err != nil {
		panic(err)
	}
	fmt.Println(out)
	// Output: desserts
}

func ExampleTemplate_Render_loop() {
	tpl, err := templatepro.Compile(`{{for n in names}}{{:@@index}}. {{:n}}
{{endfor}}`)
	if err != nil {
		panic(err)
	}
	tpl.SetData("names", []string{"Ada", "Grace"})
	out, err := tpl.Render()
	if err != nil {
		panic(err)
	}
	fmt.Print(out)
	// Output:
	// 1. Ada
	// 2. Grace
}
