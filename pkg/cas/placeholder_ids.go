package cas

import (
	"encoding/binary"
	"encoding/hex"

	remoteexecution "github.com/bazelbuild/remote-apis/build/bazel/remote/execution/v2"
	"github.com/buildbarn/bb-projfs/pkg/projfs"
	"github.com/buildbarn/bb-storage/pkg/digest"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// placeholderIDVersion is stored in the first byte of the provider ID
// of every placeholder file, so that the format of content IDs may be
// changed without misinterpreting placeholders created by older
// versions.
const placeholderIDVersion = 1

// Layout of the content ID of a placeholder file.
const (
	contentIDSizeBytesOffset  = 0
	contentIDHashLengthOffset = 8
	contentIDHashOffset       = 9
)

// encodePlaceholderIDs converts the digest of a file to the provider ID
// and content ID that are stored in the placeholder. The content ID
// holds the size and raw hash of the file, which is sufficient to
// reconstruct the digest upon hydration.
func encodePlaceholderIDs(blobDigest digest.Digest) ([]byte, []byte, error) {
	hash := blobDigest.GetHashBytes()
	if len(hash) > projfs.PlaceholderIDLength-contentIDHashOffset {
		return nil, nil, status.Errorf(codes.InvalidArgument, "Hash of digest %#v is too long to be stored in a placeholder", blobDigest.String())
	}

	providerID := make([]byte, projfs.PlaceholderIDLength)
	providerID[0] = placeholderIDVersion
	binary.LittleEndian.PutUint32(providerID[1:], uint32(blobDigest.GetDigestFunction().GetEnumValue()))

	contentID := make([]byte, projfs.PlaceholderIDLength)
	binary.LittleEndian.PutUint64(contentID[contentIDSizeBytesOffset:], uint64(blobDigest.GetSizeBytes()))
	contentID[contentIDHashLengthOffset] = byte(len(hash))
	copy(contentID[contentIDHashOffset:], hash)
	return providerID, contentID, nil
}

// contentKey returns the significant part of the content ID that
// encodePlaceholderIDs() generates for a digest.
func contentKey(blobDigest digest.Digest) (string, error) {
	_, contentID, err := encodePlaceholderIDs(blobDigest)
	if err != nil {
		return "", err
	}
	return string(contentID[:contentIDHashOffset+int(contentID[contentIDHashLengthOffset])]), nil
}

// decodePlaceholderIDs reverses encodePlaceholderIDs. The digest
// function stored in the provider ID must match the one of the input
// root, as the instance name is not stored in the placeholder.
func decodePlaceholderIDs(digestFunction digest.Function, providerID, contentID []byte) (digest.Digest, error) {
	if len(providerID) < 5 || len(contentID) < contentIDHashOffset {
		return digest.BadDigest, status.Error(codes.InvalidArgument, "Placeholder identifiers are too short")
	}
	if providerID[0] != placeholderIDVersion {
		return digest.BadDigest, status.Errorf(codes.InvalidArgument, "Placeholder has unsupported version %d", providerID[0])
	}
	if enumValue := remoteexecution.DigestFunction_Value(int32(binary.LittleEndian.Uint32(providerID[1:]))); enumValue != digestFunction.GetEnumValue() {
		return digest.BadDigest, status.Errorf(codes.InvalidArgument, "Placeholder uses digest function %s, while %s was expected", enumValue, digestFunction.GetEnumValue())
	}

	hashLength := int(contentID[contentIDHashLengthOffset])
	if contentIDHashOffset+hashLength > len(contentID) {
		return digest.BadDigest, status.Errorf(codes.InvalidArgument, "Placeholder hash length %d exceeds the size of the content ID", hashLength)
	}
	sizeBytes := binary.LittleEndian.Uint64(contentID[contentIDSizeBytesOffset:])
	return digestFunction.NewDigest(
		hex.EncodeToString(contentID[contentIDHashOffset:contentIDHashOffset+hashLength]),
		int64(sizeBytes))
}
