package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/toniebox-reverse-engineering/teddy-cloud/cmd/teddycloud/internal/config"
)

// setCoreField sets a CoreConfig field by its dotted key name
// (internal.contentDirFull, cloud.cacheContent, ...).
func setCoreField(c *config.CoreConfig, key, value string) error {
	switch strings.ToLower(key) {
	case "internal.contentdirfull":
		c.Internal.ContentDirFull = value
	case "internal.librarydirfull":
		c.Internal.LibraryDirFull = value
	case "cloud.cachecontent":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("cloud.cacheContent expects a bool: %w", err)
		}
		c.Cloud.CacheContent = b
	case "cloud.cachetolibrary":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("cloud.cacheToLibrary expects a bool: %w", err)
		}
		c.Cloud.CacheToLibrary = b
	case "cloud.priocustomcontent":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("cloud.prioCustomContent expects a bool: %w", err)
		}
		c.Cloud.PrioCustomContent = b
	case "cloud.updateonloweraudioid":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("cloud.updateOnLowerAudioId expects a bool: %w", err)
		}
		c.Cloud.UpdateOnLowerAudioID = b
	case "cloud.ffmpegstreambufferms":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("cloud.ffmpegStreamBufferMs expects an int: %w", err)
		}
		c.Cloud.FfmpegStreamBufferMs = n
	default:
		return fmt.Errorf("unknown config key %q", key)
	}
	return nil
}

// getCoreField reads a CoreConfig field by its dotted key name.
func getCoreField(c *config.CoreConfig, key string) (string, error) {
	switch strings.ToLower(key) {
	case "internal.contentdirfull":
		return c.Internal.ContentDirFull, nil
	case "internal.librarydirfull":
		return c.Internal.LibraryDirFull, nil
	case "cloud.cachecontent":
		return strconv.FormatBool(c.Cloud.CacheContent), nil
	case "cloud.cachetolibrary":
		return strconv.FormatBool(c.Cloud.CacheToLibrary), nil
	case "cloud.priocustomcontent":
		return strconv.FormatBool(c.Cloud.PrioCustomContent), nil
	case "cloud.updateonloweraudioid":
		return strconv.FormatBool(c.Cloud.UpdateOnLowerAudioID), nil
	case "cloud.ffmpegstreambufferms":
		return strconv.Itoa(c.Cloud.FfmpegStreamBufferMs), nil
	default:
		return "", fmt.Errorf("unknown config key %q", key)
	}
}
