package activity

import (
	"strings"
	"time"
)

// Event verbs and object types.
const (
	VerbArgsModified = "launchargs.modified"
	VerbArgsReset    = "launchargs.reset"
	VerbAppLaunched  = "app.launched"

	ObjectTypeArgs   = "launchargs"
	ObjectTypeLaunch = "launch"
)

// ArgsEventInput describes the common fields for launch argument events.
type ArgsEventInput struct {
	ActorID    string
	SessionID  string
	Channel    string
	App        string
	Platform   string
	LaunchID   string
	Keys       []string
	Deleted    []string
	Filtered   []string
	Metadata   map[string]any
	OccurredAt time.Time
}

// BuildArgsModifiedEvent describes a Store.Modify call. Keys lists the
// patched names, Deleted those set to the deletion marker.
func BuildArgsModifiedEvent(input ArgsEventInput) Event {
	return buildEvent(VerbArgsModified, ObjectTypeArgs, input)
}

// BuildArgsResetEvent describes a Store.Reset call.
func BuildArgsResetEvent(input ArgsEventInput) Event {
	return buildEvent(VerbArgsReset, ObjectTypeArgs, input)
}

// BuildAppLaunchedEvent describes a launch handed to the invoker.
func BuildAppLaunchedEvent(input ArgsEventInput) Event {
	return buildEvent(VerbAppLaunched, ObjectTypeLaunch, input)
}

func buildEvent(verb, objectType string, input ArgsEventInput) Event {
	metadata := cloneMap(input.Metadata)
	set := func(key string, value any) {
		if metadata == nil {
			metadata = map[string]any{}
		}
		metadata[key] = value
	}
	if app := strings.TrimSpace(input.App); app != "" {
		set("app", app)
	}
	if platform := strings.TrimSpace(input.Platform); platform != "" {
		set("platform", platform)
	}
	if input.LaunchID != "" {
		set("launch_id", input.LaunchID)
	}
	if len(input.Keys) > 0 {
		set("keys", append([]string(nil), input.Keys...))
	}
	if len(input.Deleted) > 0 {
		set("deleted", append([]string(nil), input.Deleted...))
	}
	if len(input.Filtered) > 0 {
		set("filtered", append([]string(nil), input.Filtered...))
	}

	objectID := strings.TrimSpace(input.LaunchID)
	if objectID == "" {
		objectID = strings.TrimSpace(input.App)
	}
	if objectID == "" {
		objectID = objectType
	}

	return Event{
		Verb:       verb,
		ActorID:    strings.TrimSpace(input.ActorID),
		SessionID:  strings.TrimSpace(input.SessionID),
		ObjectType: objectType,
		ObjectID:   objectID,
		Channel:    strings.TrimSpace(input.Channel),
		Metadata:   metadata,
		OccurredAt: input.OccurredAt,
	}
}
