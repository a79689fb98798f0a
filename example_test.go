package sqlshape_test

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/nao1215/sqlshape"
)

func ExampleOpen() {
	ctx := context.Background()

	db, err := sqlshape.Open(sqlshape.MemoryDatabase)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	if err := db.Exec(ctx, "CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT, dept TEXT)"); err != nil {
		log.Fatal(err)
	}
	for _, name := range []string{"alice", "bob", "carol"} {
		if _, err := db.Insert(ctx, "users", sqlshape.Record{"name": name, "dept": "dev"}); err != nil {
			log.Fatal(err)
		}
	}

	changed, err := db.Update(ctx, "users", sqlshape.Eq(map[string]any{"name": "bob"}), sqlshape.Record{"dept": "sales"})
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println("changed:", changed)

	rows, err := db.Select(ctx, sqlshape.SelectQuery{
		Table:  "users",
		Fields: []string{"name"},
		Where:  sqlshape.Eq(map[string]any{"dept": "dev"}),
		Order:  "name",
	})
	if err != nil {
		log.Fatal(err)
	}
	for _, row := range rows {
		fmt.Println(row["name"])
	}

	// Output:
	// changed: 1
	// alice
	// carol
}

func ExampleGroupBy() {
	rows := []sqlshape.Row{
		{"name": "alice", "dept": "dev"},
		{"name": "bob", "dept": "sales"},
		{"name": "carol", "dept": "dev"},
	}

	groups := sqlshape.GroupBy(rows, "dept")
	for _, key := range groups.Keys() {
		fmt.Print(key, ":")
		for _, row := range groups.Get(key) {
			fmt.Print(" ", row["name"])
		}
		fmt.Println()
	}

	// Output:
	// dev: alice carol
	// sales: bob
}

func ExampleBuildTree() {
	rows := []sqlshape.Row{
		{"id": 3, "parent_id": 1, "name": "paperbacks"},
		{"id": 1, "parent_id": nil, "name": "books"},
		{"id": 4, "parent_id": 2, "name": "vinyl"},
		{"id": 2, "parent_id": nil, "name": "music"},
		{"id": 5, "parent_id": 1, "name": "hardcovers"},
	}

	tree, err := sqlshape.BuildTree(rows, sqlshape.TreeOptions{
		ChildrenField: "children",
		IDField:       "id",
		ParentField:   "parent_id",
	})
	if err != nil {
		log.Fatal(err)
	}

	tree.Walk(func(n *sqlshape.Node) bool {
		fmt.Printf("%*s%s\n", n.Depth*2, "", n.Row["name"])
		return true
	})

	nested := tree.Rows()
	fmt.Println(len(nested[0]["children"].([]sqlshape.Row)))

	// Output:
	// books
	//   paperbacks
	//   hardcovers
	// music
	//   vinyl
	// 2
}

func ExampleNewQuery() {
	q, err := sqlshape.NewQuery("users").
		Fields("id", "name").
		WhereEq("dept", "dev").
		OrderBy("name").
		Page(2, 10).
		Build()
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(q.Table, q.Limit, q.Offset)

	// Output:
	// users 10 10
}

func ExampleWriteRows() {
	rows := []sqlshape.Row{
		{"id": 1, "name": "alice"},
		{"id": 2, "name": "bob"},
	}

	options := sqlshape.NewDumpOptions().WithFormat(sqlshape.OutputFormatTSV)
	if err := sqlshape.WriteRows(os.Stdout, "users", []string{"id", "name"}, rows, options); err != nil {
		log.Fatal(err)
	}

	// Output:
	// id	name
	// 1	alice
	// 2	bob
}
