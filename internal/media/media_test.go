package media_test

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spacesedan/echomind/internal/errs"
	"github.com/spacesedan/echomind/internal/media"
	"github.com/spacesedan/echomind/internal/models"
)

func Test_MiddleFrameIndex(t *testing.T) {
	assert.Equal(t, 0, media.MiddleFrameIndex(1))
	assert.Equal(t, 1, media.MiddleFrameIndex(2))
	assert.Equal(t, 2, media.MiddleFrameIndex(5))
	assert.Equal(t, 5, media.MiddleFrameIndex(10))
}

func Test_ValidateUpload_accepts_matching_image(t *testing.T) {
	err := media.ValidateUpload(models.MediaUpload{
		Kind:     models.MediaImage,
		Filename: "face.png",
		Data:     pngBytes(t),
	})
	assert.NoError(t, err)
}

func Test_ValidateUpload_rejects_kind_mismatch(t *testing.T) {
	err := media.ValidateUpload(models.MediaUpload{
		Kind:     models.MediaAudio,
		Filename: "note.wav",
		Data:     pngBytes(t),
	})

	require.Error(t, err)
	assert.True(t, errs.IsValidation(err))
}

func Test_ValidateUpload_rejects_empty_payload(t *testing.T) {
	err := media.ValidateUpload(models.MediaUpload{
		Kind:     models.MediaImage,
		Filename: "empty.png",
	})

	require.Error(t, err)
	assert.True(t, errs.IsValidation(err))
}

func Test_ValidateUpload_rejects_unknown_kind(t *testing.T) {
	err := media.ValidateUpload(models.MediaUpload{
		Kind: "document",
		Data: []byte("hello"),
	})

	require.Error(t, err)
	assert.True(t, errs.IsValidation(err))
}

func Test_ValidateWAV_accepts_minimal_pcm_clip(t *testing.T) {
	info, err := media.ValidateWAV(wavBytes(t, 16000, 1, 1600))

	require.NoError(t, err)
	assert.Equal(t, uint32(16000), info.SampleRate)
	assert.Equal(t, uint16(1), info.NumChannels)
}

func Test_ValidateWAV_rejects_empty_payload(t *testing.T) {
	_, err := media.ValidateWAV(nil)

	require.Error(t, err)
	assert.True(t, errs.IsValidation(err))
}

func Test_ValidateWAV_rejects_non_wav_bytes(t *testing.T) {
	_, err := media.ValidateWAV([]byte("definitely not a riff container"))

	require.Error(t, err)
	assert.True(t, errs.IsValidation(err))
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 4, 4))))
	return buf.Bytes()
}

// wavBytes builds a canonical 16-bit PCM WAV container with silent
// samples.
func wavBytes(t *testing.T, sampleRate uint32, channels uint16, samples int) []byte {
	t.Helper()

	dataSize := uint32(samples) * uint32(channels) * 2
	byteRate := sampleRate * uint32(channels) * 2

	var buf bytes.Buffer
	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+dataSize))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(&buf, binary.LittleEndian, channels)
	binary.Write(&buf, binary.LittleEndian, sampleRate)
	binary.Write(&buf, binary.LittleEndian, byteRate)
	binary.Write(&buf, binary.LittleEndian, channels*2) // block align
	binary.Write(&buf, binary.LittleEndian, uint16(16)) // bits per sample
	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, dataSize)
	buf.Write(make([]byte, dataSize))
	return buf.Bytes()
}
