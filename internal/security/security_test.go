package security

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"toast/api/internal/models"
)

var fastParams = Argon2Params{Time: 1, Memory: 8 * 1024, Threads: 1, KeyLen: 32, SaltLen: 16}

func TestPasswordRoundTrip(t *testing.T) {
	hash, err := HashPasswordWithParams("pw1234", fastParams)
	require.NoError(t, err)
	assert.Contains(t, string(hash), "$argon2id$v=19$m=8192,t=1,p=1$")

	ok, err := VerifyPassword("pw1234", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword("pw12345", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHashPassword_SaltsDiffer(t *testing.T) {
	a, err := HashPasswordWithParams("same", fastParams)
	require.NoError(t, err)
	b, err := HashPasswordWithParams("same", fastParams)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestVerifyPassword_Malformed(t *testing.T) {
	for _, h := range []string{"", "plain", "$bcrypt$v=19$m=1,t=1,p=1$a$b", "$argon2id$v=18$m=1,t=1,p=1$a$b"} {
		_, err := VerifyPassword("x", []byte(h))
		assert.ErrorIs(t, err, ErrMalformedHash, h)
	}
}

func TestParsePlatform(t *testing.T) {
	assert.Equal(t, models.PlatformWeb, ParsePlatform("web"))
	assert.Equal(t, models.PlatformDesktop, ParsePlatform(" Desktop "))
	assert.Equal(t, models.PlatformMobile, ParsePlatform("MOBILE"))
	assert.Equal(t, models.PlatformUnknown, ParsePlatform("toaster"))
	assert.Equal(t, models.PlatformUnknown, ParsePlatform(""))
}

func TestNormalizeIP(t *testing.T) {
	assert.Equal(t, "10.0.0.1/32", NormalizeIP("10.0.0.1"))
	assert.Equal(t, "10.0.0.1/32", NormalizeIP("::ffff:10.0.0.1"))
	assert.Equal(t, "2001:db8::1/128", NormalizeIP("2001:db8::1"))
	assert.Equal(t, "", NormalizeIP("not-an-ip"))
}

func TestClientInfoFromRequest(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/login/email", nil)
	r.Header.Set("User-Agent", "toast-desktop/1.0")
	r.AddCookie(&http.Cookie{Name: PlatformCookie, Value: "desktop"})

	info := ClientInfoFromRequest(r, "192.168.1.5")
	assert.Equal(t, models.PlatformDesktop, info.Platform)
	assert.Equal(t, "192.168.1.5/32", info.IP)
	assert.Equal(t, "toast-desktop/1.0", info.UserAgent)

	r.Header.Set(PlatformHeader, "mobile")
	assert.Equal(t, models.PlatformMobile, ClientInfoFromRequest(r, "::1").Platform, "header wins over cookie")
}
