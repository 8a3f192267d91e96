package querycache

import "github.com/kailas-cloud/toolsel/internal/domain/query"

// document is the persisted shape: {"testQueries":[...]}.
type document struct {
	TestQueries []queryRow `json:"testQueries"`
}

type queryRow struct {
	Query        string `json:"query"`
	ExpectedTool string `json:"expectedTool"`
}

func toDocument(queries []query.TestQuery) document {
	rows := make([]queryRow, len(queries))
	for i := range queries {
		rows[i] = queryRow{Query: queries[i].Text(), ExpectedTool: queries[i].ExpectedTool()}
	}
	return document{TestQueries: rows}
}

func fromDocument(doc document) []query.TestQuery {
	queries := make([]query.TestQuery, len(doc.TestQueries))
	for i, r := range doc.TestQueries {
		queries[i] = query.New(r.Query, r.ExpectedTool)
	}
	return queries
}
