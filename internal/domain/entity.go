package domain

import "fmt"

// Entity type names as emitted by the catalog.
const (
	EntityTable        = "table"
	EntityTopic        = "topic"
	EntityDashboard    = "dashboard"
	EntityPipeline     = "pipeline"
	EntityMlModel      = "mlmodel"
	EntityContainer    = "container"
	EntityQuery        = "query"
	EntityUser         = "user"
	EntityTeam         = "team"
	EntityGlossary     = "glossary"
	EntityGlossaryTerm = "glossaryTerm"
	EntityTag          = "tag"

	EntityClassification    = "classification"
	EntityDatabase          = "database"
	EntityDatabaseSchema    = "databaseSchema"
	EntityDatabaseService   = "databaseService"
	EntityPipelineService   = "pipelineService"
	EntityMlModelService    = "mlmodelService"
	EntityStorageService    = "storageService"
	EntityMessagingService  = "messagingService"
	EntityDashboardService  = "dashboardService"
)

// Search index names.
const (
	TableIndex     = "table_search_index"
	TopicIndex     = "topic_search_index"
	DashboardIndex = "dashboard_search_index"
	PipelineIndex  = "pipeline_search_index"
	MlModelIndex   = "mlmodel_search_index"
	ContainerIndex = "container_search_index"
	QueryIndex     = "query_search_index"
	UserIndex      = "user_search_index"
	TeamIndex      = "team_search_index"
	GlossaryIndex  = "glossary_search_index"
	TagIndex       = "tag_search_index"
)

// indexByEntity is the identity map from document-bearing entity types to
// their index. Glossary terms share the glossary index. Container/service
// parents carry no documents of their own and are absent on purpose.
var indexByEntity = map[string]string{
	EntityTable:        TableIndex,
	EntityTopic:        TopicIndex,
	EntityDashboard:    DashboardIndex,
	EntityPipeline:     PipelineIndex,
	EntityMlModel:      MlModelIndex,
	EntityContainer:    ContainerIndex,
	EntityQuery:        QueryIndex,
	EntityUser:         UserIndex,
	EntityTeam:         TeamIndex,
	EntityGlossary:     GlossaryIndex,
	EntityGlossaryTerm: GlossaryIndex,
	EntityTag:          TagIndex,
}

// IndexForEntity resolves the search index that stores documents of the
// given entity type. An unknown type is a wiring bug, not a runtime
// condition: callers are expected to fail loudly.
func IndexForEntity(entityType string) (string, error) {
	index, ok := indexByEntity[entityType]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownEntityType, entityType)
	}
	return index, nil
}
