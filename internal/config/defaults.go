package config

const (
	defaultShareDir             = "/mnt/nas-pvr"
	defaultDVRLogDir            = "/home/hts/.hts/tvheadend/dvr/log"
	defaultLogDir               = "~/.local/share/pvrsync/logs"
	defaultGuardIntervalMinutes = 60
	defaultProbeTimeoutSeconds  = 15
	defaultChecksumBlockKiB     = 128
	defaultMinFreeGiB           = 10
	defaultTVHRequestTimeout    = 10
	defaultTVHServiceName       = "tvheadend"
	defaultSMTPPort             = 587
	defaultSendmailBinary       = "/usr/sbin/ssmtp"
	defaultLogFormat            = "console"
	defaultLogLevel             = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			ShareDir:  defaultShareDir,
			DVRLogDir: defaultDVRLogDir,
			LogDir:    defaultLogDir,
		},
		Transfer: Transfer{
			GuardIntervalMinutes: defaultGuardIntervalMinutes,
			ProbeTimeoutSeconds:  defaultProbeTimeoutSeconds,
			ChecksumBlockKiB:     defaultChecksumBlockKiB,
			MinFreeGiB:           defaultMinFreeGiB,
		},
		TVHeadend: TVHeadend{
			RequestTimeout: defaultTVHRequestTimeout,
			ServiceName:    defaultTVHServiceName,
		},
		SMTP: SMTP{
			Port:     defaultSMTPPort,
			StartTLS: true,
		},
		Sendmail: Sendmail{
			Binary: defaultSendmailBinary,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
