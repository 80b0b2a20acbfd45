package query

import "github.com/opencatalog/searchsync/internal/domain"

// builders maps an index to its query builder. Indexes without an entry
// fall back to the lenient all-field query.
var builders = map[string]func(string) Description{
	domain.TableIndex:     buildTable,
	domain.TopicIndex:     buildTopic,
	domain.DashboardIndex: buildDashboard,
	domain.PipelineIndex:  buildPipeline,
	domain.MlModelIndex:   buildMlModel,
	domain.ContainerIndex: buildContainer,
	domain.QueryIndex:     buildQuery,
	domain.UserIndex:      buildUserOrTeam,
	domain.TeamIndex:      buildUserOrTeam,
	domain.GlossaryIndex:  buildGlossaryTerm,
	domain.TagIndex:       buildTag,
}

// ForIndex builds the query description for a free-text search against the
// given index.
func ForIndex(index, freeText string) Description {
	if build, ok := builders[index]; ok {
		return build(freeText)
	}
	return buildAggregate(freeText)
}

// typed is the shared base of every entity-type query: AND semantics,
// automatic fuzziness, standard facets.
func typed(freeText string, fields []FieldBoost) Description {
	return Description{
		Query:     freeText,
		Fields:    fields,
		Operator:  "AND",
		Fuzziness: "AUTO",
		Facets:    standardFacets(),
	}
}

func buildTable(freeText string) Description {
	d := typed(freeText, []FieldBoost{
		{Field: fieldDisplayName, Boost: 15},
		{Field: fieldDisplayNameNgram},
		{Field: fieldName, Boost: 15},
		{Field: fieldNameNgram},
		{Field: fieldDisplayNameKeyword, Boost: 25},
		{Field: fieldNameKeyword, Boost: 25},
		{Field: fieldDescription, Boost: 1},
		{Field: fieldDescriptionNgram, Boost: 1},
		{Field: "columns.name.keyword", Boost: 10},
		{Field: "columns.name", Boost: 2},
		{Field: "columns.name.ngram"},
		{Field: "columns.displayName", Boost: 2},
		{Field: "columns.displayName.ngram"},
		{Field: "columns.description", Boost: 1},
		{Field: "columns.children.name", Boost: 2},
	})
	d.Highlights = []string{
		fieldDescription, fieldDisplayName,
		"columns.name", "columns.description", "columns.children.name",
	}
	// Popular tables rank higher, additively, without overriding relevance.
	d.Boost = &UsageBoost{Field: "usageSummary.weeklyStats.count", Factor: 0.2, Missing: 0}
	d.Facets = append([]Facet{
		{Name: "database.name.keyword", Field: "database.name.keyword"},
		{Name: "databaseSchema.name.keyword", Field: "databaseSchema.name.keyword"},
	}, d.Facets...)
	return d
}

func buildTopic(freeText string) Description {
	d := typed(freeText, []FieldBoost{
		{Field: fieldDisplayName, Boost: 15},
		{Field: fieldDisplayNameNgram},
		{Field: fieldName, Boost: 15},
		{Field: fieldNameNgram},
		{Field: fieldDescriptionNgram, Boost: 1},
		{Field: fieldDisplayNameKeyword, Boost: 25},
		{Field: fieldNameKeyword, Boost: 25},
		{Field: fieldDescription, Boost: 1},
		{Field: "messageSchema.schemaFields.name", Boost: 2},
		{Field: "messageSchema.schemaFields.description", Boost: 1},
		{Field: "messageSchema.schemaFields.children.name", Boost: 2},
	})
	d.Highlights = []string{
		fieldDescription, fieldDisplayName,
		"messageSchema.schemaFields.description", "messageSchema.schemaFields.children.name",
	}
	d.Facets = append([]Facet{
		{Name: "messageSchema.schemaFields.name", Field: "messageSchema.schemaFields.name"},
	}, d.Facets...)
	return d
}

func buildDashboard(freeText string) Description {
	d := typed(freeText, []FieldBoost{
		{Field: fieldDisplayName, Boost: 15},
		{Field: fieldDisplayNameNgram},
		{Field: fieldName, Boost: 15},
		{Field: fieldNameNgram},
		{Field: fieldDescriptionNgram, Boost: 1},
		{Field: fieldDisplayNameKeyword, Boost: 25},
		{Field: fieldNameKeyword, Boost: 25},
		{Field: fieldDescription, Boost: 1},
		{Field: "charts.name", Boost: 2},
		{Field: "charts.description", Boost: 1},
	})
	d.Highlights = []string{fieldDescription, fieldDisplayName, "charts.name", "charts.description"}
	return d
}

func buildPipeline(freeText string) Description {
	d := typed(freeText, []FieldBoost{
		{Field: fieldDisplayName, Boost: 15},
		{Field: fieldDisplayNameNgram},
		{Field: fieldName, Boost: 15},
		{Field: fieldDescriptionNgram, Boost: 1},
		{Field: fieldDisplayNameKeyword, Boost: 25},
		{Field: fieldNameKeyword, Boost: 25},
		{Field: fieldDescription, Boost: 1},
		{Field: "tasks.name", Boost: 2},
		{Field: "tasks.description", Boost: 1},
	})
	d.Highlights = []string{fieldDescription, fieldDisplayName, "tasks.name", "tasks.description"}
	return d
}

func buildMlModel(freeText string) Description {
	d := typed(freeText, []FieldBoost{
		{Field: fieldDisplayName, Boost: 15},
		{Field: fieldDisplayNameNgram},
		{Field: fieldName, Boost: 15},
		{Field: fieldDescriptionNgram, Boost: 1},
		{Field: fieldDisplayNameKeyword, Boost: 25},
		{Field: fieldNameKeyword, Boost: 25},
		{Field: fieldDescription, Boost: 1},
		{Field: "mlFeatures.name", Boost: 2},
		{Field: "mlFeatures.description", Boost: 1},
	})
	d.Highlights = []string{fieldDescription, fieldDisplayName, "mlFeatures.name", "mlFeatures.description"}
	return d
}

func buildContainer(freeText string) Description {
	d := typed(freeText, []FieldBoost{
		{Field: fieldDisplayName, Boost: 15},
		{Field: fieldDisplayNameNgram},
		{Field: fieldName, Boost: 15},
		{Field: fieldDescription, Boost: 1},
		{Field: fieldDescriptionNgram, Boost: 1},
		{Field: fieldDisplayNameKeyword, Boost: 25},
		{Field: fieldNameKeyword, Boost: 25},
		{Field: "dataModel.columns.name", Boost: 2},
		{Field: "dataModel.columns.name.keyword", Boost: 10},
		{Field: "dataModel.columns.name.ngram"},
		{Field: "dataModel.columns.displayName", Boost: 2},
		{Field: "dataModel.columns.displayName.ngram"},
		{Field: "dataModel.columns.description", Boost: 1},
		{Field: "dataModel.columns.children.name", Boost: 2},
	})
	d.Highlights = []string{
		fieldDescription, fieldDisplayName,
		"dataModel.columns.name", "dataModel.columns.description", "dataModel.columns.children.name",
	}
	return d
}

func buildQuery(freeText string) Description {
	d := typed(freeText, []FieldBoost{
		{Field: fieldDisplayName, Boost: 10},
		{Field: fieldDisplayNameNgram},
		{Field: "query", Boost: 10},
		{Field: "query.ngram"},
		{Field: fieldDescription, Boost: 1},
		{Field: fieldDescriptionNgram, Boost: 1},
	})
	d.Highlights = []string{fieldDescription, fieldDisplayName, "query"}
	return d
}

func buildUserOrTeam(freeText string) Description {
	return typed(freeText, []FieldBoost{
		{Field: fieldDisplayName, Boost: 3},
		{Field: fieldDisplayNameKeyword, Boost: 5},
		{Field: fieldDisplayNameNgram},
		{Field: fieldName, Boost: 2},
		{Field: fieldNameKeyword, Boost: 3},
	})
}

func buildGlossaryTerm(freeText string) Description {
	d := typed(freeText, []FieldBoost{
		{Field: fieldDisplayName, Boost: 10},
		{Field: fieldDisplayNameNgram, Boost: 1},
		{Field: fieldName, Boost: 10},
		{Field: fieldNameKeyword, Boost: 10},
		{Field: fieldDisplayNameKeyword, Boost: 10},
		{Field: "synonyms", Boost: 5},
		{Field: "synonyms.ngram"},
		{Field: fieldDescription, Boost: 3},
		{Field: "glossary.name", Boost: 5},
		{Field: "glossary.displayName", Boost: 5},
		{Field: "glossary.displayName.ngram"},
	})
	d.Highlights = []string{fieldDescription, fieldName, fieldDisplayName, "synonyms"}
	d.Facets = append([]Facet{
		{Name: "tags.tagFQN", Field: "tags.tagFQN", Size: MaxAggregateSize},
		{Name: "glossary.name.keyword", Field: "glossary.name.keyword"},
	}, d.Facets...)
	return d
}

func buildTag(freeText string) Description {
	d := typed(freeText, []FieldBoost{
		{Field: fieldName, Boost: 10},
		{Field: fieldDisplayName, Boost: 10},
		{Field: fieldDisplayNameNgram, Boost: 1},
		{Field: fieldDescription, Boost: 3},
	})
	d.Highlights = []string{fieldName, fieldDisplayName, fieldDescription}
	return d
}

// buildAggregate is the lenient fallback for untyped search: all fields,
// no boost table, unparseable syntax degrades to literal matching.
func buildAggregate(freeText string) Description {
	return Description{
		Query:   freeText,
		Lenient: true,
		Facets:  standardFacets(),
	}
}
