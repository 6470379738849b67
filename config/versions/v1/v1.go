package v1

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/buger/jsonparser"
)

// Version moves the emote log settings from logs.emotes to emoteLog and
// stores the channel as a string
type Version struct{}

var errUnexpectedType = errors.New("unexpected value type")

// UpgradeConfig moves logs.emotes.{channel,settings} to emoteLog
func (*Version) UpgradeConfig(_ context.Context, e []byte) ([]byte, error) {
	legacy, dataType, _, err := jsonparser.Get(e, "logs", "emotes")
	switch {
	case errors.Is(err, jsonparser.KeyPathNotFoundError):
		return e, nil
	case err != nil:
		return e, fmt.Errorf("`logs.emotes`: %w", err)
	case dataType != jsonparser.Object:
		return e, fmt.Errorf("`logs.emotes`: %w %s", errUnexpectedType, dataType)
	}

	if _, _, _, err = jsonparser.Get(e, "emoteLog"); errors.Is(err, jsonparser.KeyPathNotFoundError) {
		emoteLog := []byte(`{}`)
		channel, channelType, _, err := jsonparser.Get(legacy, "channel")
		switch {
		case errors.Is(err, jsonparser.KeyPathNotFoundError):
		case err != nil:
			return e, fmt.Errorf("`logs.emotes.channel`: %w", err)
		case channelType == jsonparser.Number, channelType == jsonparser.String:
			if emoteLog, err = jsonparser.Set(emoteLog, []byte(`"`+string(channel)+`"`), "channel"); err != nil {
				return e, err
			}
		}
		settings, settingsType, _, err := jsonparser.Get(legacy, "settings")
		switch {
		case errors.Is(err, jsonparser.KeyPathNotFoundError):
		case err != nil:
			return e, fmt.Errorf("`logs.emotes.settings`: %w", err)
		case settingsType == jsonparser.Object:
			if emoteLog, err = jsonparser.Set(emoteLog, settings, "settings"); err != nil {
				return e, err
			}
		}
		if e, err = jsonparser.Set(e, emoteLog, "emoteLog"); err != nil {
			return e, err
		}
	}

	e = jsonparser.Delete(e, "logs", "emotes")
	if isEmptyObject(e, "logs") {
		e = jsonparser.Delete(e, "logs")
	}
	return e, nil
}

// DowngradeConfig moves emoteLog back to logs.emotes
func (*Version) DowngradeConfig(_ context.Context, e []byte) ([]byte, error) {
	emoteLog, dataType, _, err := jsonparser.Get(e, "emoteLog")
	switch {
	case errors.Is(err, jsonparser.KeyPathNotFoundError):
		return e, nil
	case err != nil:
		return e, fmt.Errorf("`emoteLog`: %w", err)
	case dataType != jsonparser.Object:
		return e, fmt.Errorf("`emoteLog`: %w %s", errUnexpectedType, dataType)
	}

	legacy := []byte(`{}`)
	if channel, err := jsonparser.GetString(emoteLog, "channel"); err == nil && channel != "" {
		value := []byte(strconv.Quote(channel))
		if _, err := strconv.ParseUint(channel, 10, 64); err == nil {
			value = []byte(channel)
		}
		if legacy, err = jsonparser.Set(legacy, value, "channel"); err != nil {
			return e, err
		}
	}
	if settings, settingsType, _, err := jsonparser.Get(emoteLog, "settings"); err == nil && settingsType == jsonparser.Object {
		if legacy, err = jsonparser.Set(legacy, settings, "settings"); err != nil {
			return e, err
		}
	}
	if e, err = jsonparser.Set(e, legacy, "logs", "emotes"); err != nil {
		return e, err
	}
	return jsonparser.Delete(e, "emoteLog"), nil
}

func isEmptyObject(e []byte, key string) bool {
	v, dataType, _, err := jsonparser.Get(e, key)
	if err != nil || dataType != jsonparser.Object {
		return false
	}
	var n int
	if err := jsonparser.ObjectEach(v, func(_, _ []byte, _ jsonparser.ValueType, _ int) error {
		n++
		return nil
	}); err != nil {
		return false
	}
	return n == 0
}
