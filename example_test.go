package docbind_test

import (
	"fmt"

	"github.com/reoring/docbind"
	"github.com/reoring/docbind/diag"
	"github.com/reoring/docbind/source/yaml"
)

type exampleServer struct {
	Name string   `docbind:"name,required"`
	Port int      `docbind:"port"`
	Tags []string `docbind:"tags"`
}

func ExampleMap() {
	root, err := yaml.Parse([]byte("name: api\nport: 8080\ntags: [a, b]\n"))
	if err != nil {
		panic(err)
	}
	srv, ok := docbind.Map[exampleServer](root)
	fmt.Printf("%+v %v\n", srv, ok)
	// Output: {Name:api Port:8080 Tags:[a b]} true
}

func ExampleMap_diagnostics() {
	root, err := yaml.Parse([]byte("name: api\nport: eighty\n"))
	if err != nil {
		panic(err)
	}
	report := diag.ReporterFunc(func(e diag.Event) { fmt.Println(e.Error()) })
	srv, ok := docbind.Map[exampleServer](root, docbind.Options{Reporter: report})
	fmt.Println(srv.Name, srv.Port, ok)
	// Output:
	// parse_error at /port (line 2, column 7): cannot convert "eighty" to int
	// api 0 false
}

func ExampleMapInto() {
	cfg := exampleServer{Name: "default", Port: 80}
	root, _ := yaml.Parse([]byte("port: 9090\n"))
	ok, err := docbind.MapInto(&cfg, root, docbind.Options{Reporter: diag.Discard})
	fmt.Println(cfg.Name, cfg.Port, ok, err)
	// Output: default 9090 false <nil>
}
