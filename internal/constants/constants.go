package constants

import "time"

const (
	KafkaBatchTimeout = 10 * time.Millisecond
	KafkaWriteTimeout = 10 * time.Second
)

const (
	ShutdownTimeout = 5 * time.Second
)

const (
	DefaultLimit = 100
	MaxLimit     = 1000
)

const (
	DefaultMongoDBName = "clinicq"
	TemplateCollection = "message_templates"
)

const (
	CacheKeyPrefixConflicts       = "conflicts:"
	DefaultConflictCacheTTLSecond = 60
)

const (
	DefaultChangeEventTopic = "template_config_updates"
)

const (
	EntityTypeRule     = "condition_rule"
	EntityTypeTemplate = "message_template"
)
