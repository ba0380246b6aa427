package firestore

// Query describes a read of a single collection with at most one field
// equality filter. Built fresh per call, never persisted.
type Query struct {
	collection  string
	filterPath  string
	filterValue Value
	hasFilter   bool
}

// NewQuery creates a query over the given collection
func NewQuery(collection string) Query {
	return Query{collection: collection}
}

// WhereEqual restricts the query to documents whose field at fieldPath equals
// value. The filter value travels through the same codec as document writes,
// so query semantics and write semantics cannot diverge.
func (q Query) WhereEqual(fieldPath string, value Value) Query {
	q.filterPath = fieldPath
	q.filterValue = value
	q.hasFilter = true
	return q
}

// structuredQueryBody is the JSON envelope the runQuery endpoint expects
type structuredQueryBody struct {
	StructuredQuery structuredQuery `json:"structuredQuery"`
}

type structuredQuery struct {
	From  []collectionSelector `json:"from"`
	Where *queryFilter         `json:"where,omitempty"`
}

type collectionSelector struct {
	CollectionID string `json:"collectionId"`
}

type queryFilter struct {
	FieldFilter fieldFilter `json:"fieldFilter"`
}

type fieldFilter struct {
	Field fieldReference `json:"field"`
	Op    string         `json:"op"`
	Value WireValue      `json:"value"`
}

type fieldReference struct {
	FieldPath string `json:"fieldPath"`
}

// toWire builds the structured query payload, encoding the filter value
func (q Query) toWire() (structuredQueryBody, error) {
	body := structuredQueryBody{
		StructuredQuery: structuredQuery{
			From: []collectionSelector{{CollectionID: q.collection}},
		},
	}

	if q.hasFilter {
		encoded, err := Encode(q.filterValue)
		if err != nil {
			return structuredQueryBody{}, err
		}
		body.StructuredQuery.Where = &queryFilter{
			FieldFilter: fieldFilter{
				Field: fieldReference{FieldPath: q.filterPath},
				Op:    "EQUAL",
				Value: encoded,
			},
		}
	}

	return body, nil
}
