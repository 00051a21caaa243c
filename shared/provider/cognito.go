package provider

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/cognitoidentityprovider"

	"github.com/pranavk/go-superadmin-service/shared/config"
)

// CognitoProvider implements IdentityProvider against an AWS Cognito user
// pool. Roles map to Cognito groups. Management calls are authorized by the
// ambient AWS credentials (request signing), so IssueToken is unsupported.
type CognitoProvider struct {
	client       *cognitoidentityprovider.CognitoIdentityProvider
	userPoolID   string
	clientID     string
	clientSecret string
}

// NewCognitoProvider creates a provider client from configuration.
func NewCognitoProvider(cfg *config.IdentityProviderConfig) (*CognitoProvider, error) {
	sess, err := session.NewSession(&aws.Config{
		Region: aws.String(cfg.AWSRegion),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: creating AWS session: %v", ErrProvider, err)
	}

	return &CognitoProvider{
		client:       cognitoidentityprovider.New(sess),
		userPoolID:   cfg.UserPoolID,
		clientID:     cfg.AppClientID,
		clientSecret: cfg.AppClientSecret,
	}, nil
}

// CreateAccount creates a pool user with a permanent password and a verified
// email, returning the Cognito sub as the user id.
func (p *CognitoProvider) CreateAccount(ctx context.Context, account Account) (string, error) {
	attributes := []*cognitoidentityprovider.AttributeType{
		{Name: aws.String("email"), Value: aws.String(account.Email)},
		{Name: aws.String("email_verified"), Value: aws.String("true")},
		{Name: aws.String("given_name"), Value: aws.String(account.FirstName)},
		{Name: aws.String("family_name"), Value: aws.String(account.LastName)},
	}
	for name, value := range account.Metadata {
		attributes = append(attributes, &cognitoidentityprovider.AttributeType{
			Name:  aws.String("custom:" + name),
			Value: aws.String(value),
		})
	}

	created, err := p.client.AdminCreateUserWithContext(ctx, &cognitoidentityprovider.AdminCreateUserInput{
		UserPoolId:     aws.String(p.userPoolID),
		Username:       aws.String(account.Email),
		MessageAction:  aws.String(cognitoidentityprovider.MessageActionTypeSuppress),
		UserAttributes: attributes,
	})
	if err != nil {
		return "", fmt.Errorf("%w: creating user: %v", ErrProvider, err)
	}

	_, err = p.client.AdminSetUserPasswordWithContext(ctx, &cognitoidentityprovider.AdminSetUserPasswordInput{
		UserPoolId: aws.String(p.userPoolID),
		Username:   aws.String(account.Email),
		Password:   aws.String(account.Password),
		Permanent:  aws.Bool(true),
	})
	if err != nil {
		return "", fmt.Errorf("%w: setting password: %v", ErrProvider, err)
	}

	for _, attr := range created.User.Attributes {
		if aws.StringValue(attr.Name) == "sub" {
			return aws.StringValue(attr.Value), nil
		}
	}
	return "", fmt.Errorf("%w: created user has no sub attribute", ErrProvider)
}

// ListRoles returns the pool's groups as the role catalog.
func (p *CognitoProvider) ListRoles(ctx context.Context) ([]Role, error) {
	out, err := p.client.ListGroupsWithContext(ctx, &cognitoidentityprovider.ListGroupsInput{
		UserPoolId: aws.String(p.userPoolID),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: listing groups: %v", ErrProvider, err)
	}

	roles := make([]Role, 0, len(out.Groups))
	for _, group := range out.Groups {
		name := aws.StringValue(group.GroupName)
		if name == "" {
			return nil, fmt.Errorf("%w: group entry missing name", ErrProvider)
		}
		roles = append(roles, Role{ID: name, Name: name})
	}
	return roles, nil
}

// AssignRole adds the user to the group named by roleID.
func (p *CognitoProvider) AssignRole(ctx context.Context, userID, roleID string) error {
	_, err := p.client.AdminAddUserToGroupWithContext(ctx, &cognitoidentityprovider.AdminAddUserToGroupInput{
		UserPoolId: aws.String(p.userPoolID),
		Username:   aws.String(userID),
		GroupName:  aws.String(roleID),
	})
	if err != nil {
		return fmt.Errorf("%w: adding user to group %s: %v", ErrProvider, roleID, err)
	}
	return nil
}

// IssueToken is unsupported: Cognito management calls are signed with the
// ambient AWS credentials rather than a bearer token.
func (p *CognitoProvider) IssueToken(ctx context.Context) (string, error) {
	return "", fmt.Errorf("%w: cognito management calls use request signing, not tokens", ErrProvider)
}

// IssueUserToken exchanges end-user credentials for an access token via the
// USER_PASSWORD_AUTH flow.
func (p *CognitoProvider) IssueUserToken(ctx context.Context, email, password string) (string, error) {
	authParams := map[string]*string{
		"USERNAME": aws.String(email),
		"PASSWORD": aws.String(password),
	}
	if hash := p.secretHash(email); hash != "" {
		authParams["SECRET_HASH"] = aws.String(hash)
	}

	out, err := p.client.InitiateAuthWithContext(ctx, &cognitoidentityprovider.InitiateAuthInput{
		AuthFlow:       aws.String("USER_PASSWORD_AUTH"),
		ClientId:       aws.String(p.clientID),
		AuthParameters: authParams,
	})
	if err != nil {
		return "", fmt.Errorf("%w: initiate auth: %v", ErrProvider, err)
	}

	if out.AuthenticationResult == nil || out.AuthenticationResult.AccessToken == nil {
		return "", fmt.Errorf("%w: auth response missing access token", ErrProvider)
	}
	return aws.StringValue(out.AuthenticationResult.AccessToken), nil
}

// secretHash computes the Cognito secret hash for a username when the app
// client has a secret configured.
func (p *CognitoProvider) secretHash(username string) string {
	if p.clientSecret == "" {
		return ""
	}
	mac := hmac.New(sha256.New, []byte(p.clientSecret))
	mac.Write([]byte(username + p.clientID))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

var _ IdentityProvider = (*CognitoProvider)(nil)
