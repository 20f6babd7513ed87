package cas

import (
	"testing"

	remoteexecution "github.com/bazelbuild/remote-apis/build/bazel/remote/execution/v2"
	"github.com/buildbarn/bb-projfs/pkg/projfs"
	"github.com/buildbarn/bb-storage/pkg/digest"
	"github.com/buildbarn/bb-storage/pkg/testutil"
	"github.com/stretchr/testify/require"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestPlaceholderIDs(t *testing.T) {
	digestFunction := digest.MustNewFunction("hello", remoteexecution.DigestFunction_SHA256)
	blobDigest := digest.MustNewDigest("hello", remoteexecution.DigestFunction_SHA256, "185f8db32271fe25f561a6fc938b2e264306ec304eda518007d1764826381969", 11)

	providerID, contentID, err := encodePlaceholderIDs(blobDigest)
	require.NoError(t, err)
	require.Len(t, providerID, projfs.PlaceholderIDLength)
	require.Len(t, contentID, projfs.PlaceholderIDLength)
	require.Equal(t, []byte{1, byte(remoteexecution.DigestFunction_SHA256), 0, 0, 0}, providerID[:5])
	require.Equal(t, []byte{11, 0, 0, 0, 0, 0, 0, 0, 32, 0x18, 0x5f}, contentID[:11])

	t.Run("RoundTrip", func(t *testing.T) {
		decodedDigest, err := decodePlaceholderIDs(digestFunction, providerID, contentID)
		require.NoError(t, err)
		require.Equal(t, blobDigest, decodedDigest)
	})

	t.Run("UnsupportedVersion", func(t *testing.T) {
		badProviderID := append([]byte(nil), providerID...)
		badProviderID[0] = 7
		_, err := decodePlaceholderIDs(digestFunction, badProviderID, contentID)
		testutil.RequireEqualStatus(t, status.Error(codes.InvalidArgument, "Placeholder has unsupported version 7"), err)
	})

	t.Run("DigestFunctionMismatch", func(t *testing.T) {
		_, err := decodePlaceholderIDs(digest.MustNewFunction("hello", remoteexecution.DigestFunction_MD5), providerID, contentID)
		testutil.RequireEqualStatus(t, status.Error(codes.InvalidArgument, "Placeholder uses digest function SHA256, while MD5 was expected"), err)
	})

	t.Run("HashTooLong", func(t *testing.T) {
		badContentID := append([]byte(nil), contentID...)
		badContentID[8] = 255
		_, err := decodePlaceholderIDs(digestFunction, providerID, badContentID)
		testutil.RequireEqualStatus(t, status.Error(codes.InvalidArgument, "Placeholder hash length 255 exceeds the size of the content ID"), err)
	})

	t.Run("HashLengthMismatch", func(t *testing.T) {
		// The digest function determines the length of the
		// hash, which the content ID must respect.
		badContentID := append([]byte(nil), contentID...)
		badContentID[8] = 16
		_, err := decodePlaceholderIDs(digestFunction, providerID, badContentID)
		require.Equal(t, codes.InvalidArgument, status.Code(err))
	})
}

func TestContentKey(t *testing.T) {
	blobDigest := digest.MustNewDigest("hello", remoteexecution.DigestFunction_MD5, "8b1a9953c4611296a827abf8c47804d7", 200)
	_, contentID, err := encodePlaceholderIDs(blobDigest)
	require.NoError(t, err)

	// The key only consists of the used part of the content ID.
	key, err := contentKey(blobDigest)
	require.NoError(t, err)
	require.Equal(t, string(contentID[:9+16]), key)

	otherKey, err := contentKey(digest.MustNewDigest("other", remoteexecution.DigestFunction_MD5, "8b1a9953c4611296a827abf8c47804d7", 200))
	require.NoError(t, err)
	require.Equal(t, key, otherKey)
}
