package ytdlp

// Downloader flags.
const (
	AddMetadata       = "--add-metadata"
	AudioFormat       = "--audio-format"
	AudioQuality      = "--audio-quality"
	Continue          = "--continue"
	Cookies           = "--cookies"
	EndOfOptions      = "--"
	ExtractAudio      = "--extract-audio"
	FormatFlag        = "--format"
	GeoBypass         = "--geo-bypass"
	IgnoreErrors      = "--ignore-errors"
	MergeOutputFormat = "--merge-output-format"
	NoOverwrites      = "--no-overwrites"
	NoWarnings        = "--no-warnings"
	Output            = "--output"
	PlaylistItems     = "--playlist-items"
	UserAgentFlag     = "--user-agent"
	Verbose           = "--verbose"
)

// Format selectors and post-processing values.
const (
	SelectBest          = "best"
	SelectBestAudio     = "bestaudio"
	SelectBestSeparated = "bestvideo+bestaudio/best"
	ContainerMP4        = "mp4"
	CodecMP3            = "mp3"
	AudioBitrate        = "192K"
)

// Output template fields.
const (
	FieldTitle         = "%(title)s"
	FieldExt           = "%(ext)s"
	FieldPlaylistTitle = "%(playlist_title)s"
	FieldUploader      = "%(uploader)s"
)

// TimestampLayout stamps output filenames so repeated runs never collide.
const TimestampLayout = "20060102_150405"
