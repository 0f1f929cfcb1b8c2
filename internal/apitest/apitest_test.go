package apitest

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/branchd-dev/storefront/internal/auth"
	"github.com/branchd-dev/storefront/internal/cli/client"
	"github.com/branchd-dev/storefront/internal/models"
)

func TestSignUpAndLogin(t *testing.T) {
	srv := New(t)
	c := client.New(srv.URL)
	ctx := context.Background()

	res, err := c.Register(ctx, client.RegisterRequest{Name: "Ada", Lastname: "Lovelace", Email: "ada@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", res.Data.Email)
	assert.NotEqual(t, "secret1", res.Data.Password)

	_, err = c.VerifyEmail(ctx, client.VerifyEmailRequest{Email: "ada@example.com", VerificationCode: "000000", TempUser: res.Data})
	assert.Equal(t, "Invalid verification code", client.Message(err))

	msg, err := c.VerifyEmail(ctx, client.VerifyEmailRequest{Email: "ada@example.com", VerificationCode: DefaultCode, TempUser: res.Data})
	require.NoError(t, err)
	assert.Equal(t, "Email verified", msg)

	_, err = c.Login(ctx, client.LoginRequest{Email: "ada@example.com", Password: "wrong-pass"})
	var apiErr *client.Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)

	login, err := c.Login(ctx, client.LoginRequest{Email: "ada@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, login.User.Role)

	info, err := auth.Inspect(login.Token)
	require.NoError(t, err)
	assert.Equal(t, login.User.ID, info.Subject)

	me, err := c.Me(ctx, login.Token)
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", me.FullName())
}

func TestPasswordReset(t *testing.T) {
	srv := New(t)
	srv.SetCode("654321")
	user := srv.SeedUser(t, models.User{Name: "Ada", Email: "ada@example.com"}, "old-pass")
	c := client.New(srv.URL)
	ctx := context.Background()

	_, err := c.ForgetPassword(ctx, "nobody@example.com")
	assert.Equal(t, "User not found", client.Message(err))

	_, err = c.ForgetPassword(ctx, user.Email)
	require.NoError(t, err)

	_, err = c.ResetCodeCheck(ctx, client.ResetCodeCheckRequest{Email: user.Email, Code: DefaultCode})
	assert.Equal(t, "Invalid reset code", client.Message(err))

	check, err := c.ResetCodeCheck(ctx, client.ResetCodeCheckRequest{Email: user.Email, Code: "654321"})
	require.NoError(t, err)
	require.NotEmpty(t, check.TemporaryToken)

	_, err = c.ResetPassword(ctx, client.ResetPasswordRequest{TemporaryToken: check.TemporaryToken, Password: "new-pass"})
	require.NoError(t, err)

	// The temporary token is single use
	_, err = c.ResetPassword(ctx, client.ResetPasswordRequest{TemporaryToken: check.TemporaryToken, Password: "other-pass"})
	assert.Error(t, err)

	_, err = c.Login(ctx, client.LoginRequest{Email: user.Email, Password: "new-pass"})
	require.NoError(t, err)
}

func TestAdminRoutes(t *testing.T) {
	srv := New(t)
	admin := srv.SeedUser(t, models.User{Name: "Root", Email: "root@example.com", Role: models.RoleAdmin}, "secret1")
	user := srv.SeedUser(t, models.User{Name: "Bob", Email: "bob@example.com"}, "secret1")
	c := client.New(srv.URL)
	ctx := context.Background()

	_, err := c.Brands().Create(ctx, srv.Token(t, user), models.Brand{Name: "Acme"})
	var apiErr *client.Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)

	_, err = c.Brands().Create(ctx, "", models.Brand{Name: "Acme"})
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)

	token := srv.Token(t, admin)
	_, err = c.Brands().Create(ctx, token, models.Brand{Name: "Acme"})
	require.NoError(t, err)

	brands, err := c.Brands().ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, brands, 1)

	_, err = c.Brands().Update(ctx, token, brands[0].ID, models.Brand{Name: "Acme Corp"})
	require.NoError(t, err)
	got, err := c.Brands().GetByID(ctx, brands[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", got.Name)

	users, err := c.ListUsers(ctx, token)
	require.NoError(t, err)
	assert.Len(t, users, 2)

	_, err = c.UpdateUserRole(ctx, token, user.ID, models.RoleAdmin)
	require.NoError(t, err)
	updated, _ := srv.User(user.ID)
	assert.True(t, updated.IsAdmin())

	_, err = c.Brands().Delete(ctx, token, brands[0].ID)
	require.NoError(t, err)
	_, err = c.Brands().GetByID(ctx, brands[0].ID)
	assert.Equal(t, "Brand not found", client.Message(err))
}

func TestProductImages(t *testing.T) {
	srv := New(t)
	admin := srv.SeedUser(t, models.User{Email: "root@example.com", Role: models.RoleAdmin}, "secret1")
	brand := srv.SeedBrand("Acme")
	pt := srv.SeedType("Chair")
	p := srv.SeedProduct(models.Product{Name: "Stool", Price: 10, BrandID: brand.ID, ProductTypeID: pt.ID, Images: []string{"a.jpg", "b.jpg"}})

	c := client.New(srv.URL)
	ctx := context.Background()
	token := srv.Token(t, admin)

	_, err := c.Brands().Delete(ctx, token, brand.ID)
	assert.Equal(t, "Brand is used by a product", client.Message(err))

	_, err = c.Products().Update(ctx, token, p.ID, client.ProductInput{
		Name:           "Stool",
		Price:          12.5,
		BrandID:        brand.ID,
		ProductTypeID:  pt.ID,
		ExistingImages: []string{"a.jpg"},
		NewImages:      []client.Upload{{Filename: "c.PNG", Content: strings.NewReader("png")}},
		DeletedImages:  []string{"b.jpg"},
	})
	require.NoError(t, err)

	got, err := c.Products().GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 12.5, got.Price)
	assert.Equal(t, "Acme", got.BrandName)
	require.Len(t, got.Images, 2)
	assert.Equal(t, "a.jpg", got.Images[0])
	assert.True(t, strings.HasSuffix(got.Images[1], ".png"))
	assert.False(t, srv.HasUpload("b.jpg"))

	resp, err := http.Get(c.ImageURL(got.Images[1]))
	require.NoError(t, err)
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "png", string(body))

	_, err = c.Products().Create(ctx, token, client.ProductInput{Name: "Desk", Price: 5, BrandID: "missing", ProductTypeID: pt.ID})
	assert.Equal(t, "Unknown brand or product type", client.Message(err))
}

func TestFaultInjection(t *testing.T) {
	srv := New(t)
	c := client.New(srv.URL)

	srv.Fail("/api/brand/all", http.StatusServiceUnavailable, "")
	_, err := c.Brands().ListAll(context.Background())
	assert.Equal(t, client.FallbackMessage, client.Message(err))
	assert.Equal(t, 1, srv.Hits("/api/brand/all"))

	srv.Recover("/api/brand/all")
	_, err = c.Brands().ListAll(context.Background())
	require.NoError(t, err)
}

func TestCORS(t *testing.T) {
	srv := New(t)

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/api/product/all", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "http://localhost:3000", resp.Header.Get("Access-Control-Allow-Origin"))
}
