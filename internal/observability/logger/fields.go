package logger

import (
	"time"

	"go.uber.org/zap"
)

// Standard field constructors. Using these instead of ad-hoc zap.String
// calls keeps key names consistent across the codebase.

func RequestID(v string) zap.Field { return zap.String("request_id", v) }

func Method(v string) zap.Field { return zap.String("method", v) }

func Addr(v string) zap.Field { return zap.String("addr", v) }

func Path(v string) zap.Field { return zap.String("path", v) }

func Status(v int) zap.Field { return zap.Int("status", v) }

func Duration(v time.Duration) zap.Field { return zap.Duration("duration", v) }

func DurationMs(v int64) zap.Field { return zap.Int64("duration_ms", v) }

func Bytes(v int) zap.Field { return zap.Int("bytes", v) }

func ClientIP(v string) zap.Field { return zap.String("client_ip", v) }

func UserID(v string) zap.Field { return zap.String("user_id", v) }

func Email(v string) zap.Field { return zap.String("email", v) }

func DeviceKey(v string) zap.Field { return zap.String("device_key", v) }

// Component names the package or module emitting the entry.
func Component(v string) zap.Field { return zap.String("component", v) }

// Op names the operation in progress.
func Op(v string) zap.Field { return zap.String("op", v) }

// Layer is one of handler, service, repository.
func Layer(v string) zap.Field { return zap.String("layer", v) }

func Err(err error) zap.Field { return zap.Error(err) }

func Key(v string) zap.Field { return zap.String("key", v) }

func Count(v int) zap.Field { return zap.Int("count", v) }
