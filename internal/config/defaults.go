package config

const (
	defaultTemplatesDir         = "~/.local/share/vellum/templates"
	defaultOutputDir            = "~/.local/share/vellum/documents"
	defaultInboxDir             = "~/.local/share/vellum/inbox"
	defaultStateDir             = "~/.local/share/vellum/state"
	defaultLogDir               = "~/.local/share/vellum/logs"
	defaultAPIBind              = "127.0.0.1:7906"
	defaultLabelSeries          = "ART"
	defaultTemplateExtension    = ".txt"
	defaultNotifyRequestTimeout = 10
	defaultQueuePollInterval    = 5
	defaultErrorRetryInterval   = 10
	defaultHeartbeatInterval    = 15
	defaultHeartbeatTimeout     = 120
	defaultInboxRescanSeconds   = 60
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
	defaultLogRetentionDays     = 60
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			TemplatesDir: defaultTemplatesDir,
			OutputDir:    defaultOutputDir,
			InboxDir:     defaultInboxDir,
			StateDir:     defaultStateDir,
			LogDir:       defaultLogDir,
			APIBind:      defaultAPIBind,
		},
		Generation: Generation{
			LabelSeries:       defaultLabelSeries,
			TemplateExtension: defaultTemplateExtension,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyRequestTimeout,
			Queue:          true,
			Delivery:       true,
			Review:         true,
			Errors:         true,
		},
		Workflow: Workflow{
			QueuePollInterval:  defaultQueuePollInterval,
			ErrorRetryInterval: defaultErrorRetryInterval,
			HeartbeatInterval:  defaultHeartbeatInterval,
			HeartbeatTimeout:   defaultHeartbeatTimeout,
			InboxRescanSeconds: defaultInboxRescanSeconds,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
