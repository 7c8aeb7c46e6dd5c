package config

const (
	defaultConfigPath  = "~/.config/chamberpivot/config.toml"
	projectConfigName  = "chamberpivot.toml"
	defaultTimestamp   = "Minute of Date And Time"
	defaultChamber     = "Chamber"
	defaultValue       = "Filtered Values"
	defaultLayout      = "January 2, 2006 at 3:04 PM"
	defaultEncoding    = EncodingAuto
	defaultSampleBytes = 10000
	defaultWarming     = 3.5
	defaultDuplicates  = DuplicatesMean
	defaultDayNight    = "day_night.csv"
	defaultDayNightEnc = "utf-16"
	defaultDayNightCol = "day_night"
	defaultMinuend     = "tr_04"
	defaultSubtrahend  = "tr_02"
	defaultDerived     = "asym_sp"
	defaultPrecision   = 2
	defaultAnchor      = "tr_02"
	defaultOutputPath  = "out.csv"
	defaultSheet       = "data"
	defaultTable       = "readings"
	defaultLogFormat   = "console"
	defaultLogLevel    = "info"
)

// Encoding and policy names accepted in configuration files.
const (
	EncodingAuto = "auto"

	DuplicatesMean  = "mean"
	DuplicatesLast  = "last"
	DuplicatesError = "error"

	FormatCSV    = "csv"
	FormatXLSX   = "xlsx"
	FormatSQLite = "sqlite"

	GroupAmbient    = "ambient"
	GroupSymmetric  = "symmetric"
	GroupAsymmetric = "asymmetric"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Input: Input{
			TimestampColumn: defaultTimestamp,
			ChamberColumn:   defaultChamber,
			ValueColumn:     defaultValue,
			TimestampLayout: defaultLayout,
			Encoding:        defaultEncoding,
			SampleBytes:     defaultSampleBytes,
		},
		Chambers: Chambers{
			Ambient:          []string{"tr_02", "tr_06", "tr_10", "tr_14"},
			Symmetric:        []string{"tr_03", "tr_05", "tr_11", "tr_13"},
			Asymmetric:       []string{"tr_04", "tr_07", "tr_09", "tr_12"},
			DropGroups:       []string{GroupAsymmetric},
			SymmetricWarming: defaultWarming,
		},
		Pivot: Pivot{
			Duplicates: defaultDuplicates,
		},
		Merge: Merge{
			DayNightPath:       defaultDayNight,
			DayNightEncoding:   defaultDayNightEnc,
			DayNightColumn:     defaultDayNightCol,
			SetpointMinuend:    defaultMinuend,
			SetpointSubtrahend: defaultSubtrahend,
			DerivedColumn:      defaultDerived,
			DerivedPrecision:   defaultPrecision,
			AnchorColumn:       defaultAnchor,
		},
		Output: Output{
			Path:  defaultOutputPath,
			Sheet: defaultSheet,
			Table: defaultTable,
			Lock:  true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
