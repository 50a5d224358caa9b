// Package docsearch provides an in-process Go client for the docsearch faceted
// documentation search backed by Elasticsearch.
//
// # Low-level API
//
//	client, _ := docsearch.New(ctx,
//	    docsearch.WithElasticsearch("http://localhost:9200"),
//	    docsearch.WithIndex("qa-docs"),
//	    docsearch.WithSchema(schema),
//	)
//	state, _ := client.Search(ctx, docsearch.State{
//	    SearchTerm: "fim",
//	    Filters:    []docsearch.Filter{{Field: "tiers", Values: []docsearch.Value{docsearch.Term("0")}}},
//	})
//
// # Typed API with Go generics
//
//	type Test struct {
//	    ID      string   `docsearch:"id"`
//	    Name    string   `docsearch:"name,search,highlight"`
//	    Tiers   []int    `docsearch:"tiers,facet,disjunctive"`
//	    GroupID string   `docsearch:"group_id,filter"`
//	}
//
//	schema, _ := docsearch.SchemaFor[Test]()
//	idx, _ := docsearch.NewIndex[Test](client)
//	res, _ := idx.Search().Query("fim").Where("tiers", 0).Page(2).Do(ctx)
package docsearch
