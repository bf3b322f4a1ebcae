// Package media shells out to ffmpeg to extract audio tracks from video.
package media
